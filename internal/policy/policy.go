// Package policy holds the seniority and ownership rules that gate task and user management.
package policy

import "github.com/nxsys/task-tracker/internal/domain"

// Operation names an action subject to authorization.
type Operation string

const (
	OpCreateRootTask Operation = "create_root_task"
	OpCreateSubtask  Operation = "create_subtask"
	OpAssignTask     Operation = "assign_task"
	OpEditTask       Operation = "edit_task"
	OpDeleteTask     Operation = "delete_task"
	OpChangeStatus   Operation = "change_status"
	OpManageUsers    Operation = "manage_users"
	OpDeleteUser     Operation = "delete_user"
)

// Outcome classifies a denial so callers can pick the right error.
type Outcome int

const (
	Allow Outcome = iota
	// DenyForbidden means the actor lacks the rank or ownership required.
	DenyForbidden
	// DenyInvalid means the request is disallowed for the target regardless of rank.
	DenyInvalid
)

// Actor is the authenticated caller.
type Actor struct {
	ID             int64
	SeniorityLevel int
}

// ActorFromUser builds an Actor from a user record.
func ActorFromUser(u *domain.User) Actor {
	if u == nil {
		return Actor{}
	}
	return Actor{ID: u.ID, SeniorityLevel: u.SeniorityLevel}
}

// Resource carries the attributes of the target that rules look at. Fields irrelevant to an
// operation are ignored.
type Resource struct {
	CreatorID         int64
	AssigneeID        int64
	AssigneeSeniority int
	ParentAssigneeID  int64
	TargetUserID      int64
}

// Decision is the result of an evaluation.
type Decision struct {
	Outcome Outcome
	Reason  string
}

// Allowed reports whether the decision permits the operation.
func (d Decision) Allowed() bool {
	return d.Outcome == Allow
}

func allow() Decision { return Decision{Outcome: Allow} }

func forbid(reason string) Decision { return Decision{Outcome: DenyForbidden, Reason: reason} }

// Evaluate applies the rule for op.
func Evaluate(op Operation, actor Actor, res Resource) Decision {
	switch op {
	case OpCreateRootTask:
		if actor.SeniorityLevel != domain.AdminSeniority {
			return forbid("only level 1 users can create root tasks")
		}
	case OpCreateSubtask:
		if res.ParentAssigneeID != actor.ID {
			return forbid("you can only add subtasks to tasks assigned to you")
		}
	case OpAssignTask:
		if res.AssigneeSeniority < actor.SeniorityLevel {
			return forbid("cannot assign tasks to more senior users")
		}
	case OpEditTask:
		if res.CreatorID != actor.ID {
			return forbid("you can only edit tasks you created")
		}
	case OpDeleteTask:
		if res.CreatorID != actor.ID {
			return forbid("you can only delete tasks you created")
		}
	case OpChangeStatus:
		if res.AssigneeID != actor.ID {
			return forbid("only the assignee can change task status")
		}
	case OpManageUsers:
		if actor.SeniorityLevel != domain.AdminSeniority {
			return forbid("only senior executives can manage users")
		}
	case OpDeleteUser:
		if actor.SeniorityLevel != domain.AdminSeniority {
			return forbid("only senior executives can delete users")
		}
		if res.TargetUserID == actor.ID {
			return Decision{Outcome: DenyInvalid, Reason: "cannot delete your own account"}
		}
	default:
		return forbid("unknown operation")
	}
	return allow()
}
