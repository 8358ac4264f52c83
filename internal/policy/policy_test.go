package policy

import (
	"testing"

	"github.com/nxsys/task-tracker/internal/domain"
)

func TestEvaluate(t *testing.T) {
	admin := Actor{ID: 1, SeniorityLevel: 1}
	manager := Actor{ID: 2, SeniorityLevel: 2}
	dev := Actor{ID: 3, SeniorityLevel: 3}

	tests := []struct {
		name  string
		op    Operation
		actor Actor
		res   Resource
		want  Outcome
	}{
		{"admin creates root", OpCreateRootTask, admin, Resource{}, Allow},
		{"rank 3 creates root", OpCreateRootTask, dev, Resource{}, DenyForbidden},
		{"parent assignee adds subtask", OpCreateSubtask, manager, Resource{ParentAssigneeID: 2}, Allow},
		{"non assignee adds subtask", OpCreateSubtask, admin, Resource{ParentAssigneeID: 2}, DenyForbidden},
		{"assign to junior", OpAssignTask, manager, Resource{AssigneeSeniority: 3}, Allow},
		{"assign to peer", OpAssignTask, manager, Resource{AssigneeSeniority: 2}, Allow},
		{"assign to senior", OpAssignTask, manager, Resource{AssigneeSeniority: 1}, DenyForbidden},
		{"creator edits", OpEditTask, dev, Resource{CreatorID: 3}, Allow},
		{"non creator edits", OpEditTask, admin, Resource{CreatorID: 3}, DenyForbidden},
		{"creator deletes", OpDeleteTask, dev, Resource{CreatorID: 3}, Allow},
		{"non creator deletes", OpDeleteTask, manager, Resource{CreatorID: 3}, DenyForbidden},
		{"assignee changes status", OpChangeStatus, dev, Resource{AssigneeID: 3, CreatorID: 2}, Allow},
		{"creator changes status", OpChangeStatus, manager, Resource{AssigneeID: 3, CreatorID: 2}, DenyForbidden},
		{"admin manages users", OpManageUsers, admin, Resource{}, Allow},
		{"manager manages users", OpManageUsers, manager, Resource{}, DenyForbidden},
		{"admin deletes other", OpDeleteUser, admin, Resource{TargetUserID: 3}, Allow},
		{"admin deletes self", OpDeleteUser, admin, Resource{TargetUserID: 1}, DenyInvalid},
		{"manager deletes other", OpDeleteUser, manager, Resource{TargetUserID: 3}, DenyForbidden},
		{"unknown op", Operation("nope"), admin, Resource{}, DenyForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.op, tt.actor, tt.res)
			if got.Outcome != tt.want {
				t.Fatalf("Evaluate(%s) = %+v, want outcome %v", tt.op, got, tt.want)
			}
			if !got.Allowed() && got.Reason == "" {
				t.Fatal("denials must carry a reason")
			}
		})
	}
}

func TestActorFromUser(t *testing.T) {
	a := ActorFromUser(&domain.User{ID: 9, SeniorityLevel: 4})
	if a.ID != 9 || a.SeniorityLevel != 4 {
		t.Fatalf("actor = %+v", a)
	}
	if (ActorFromUser(nil) != Actor{}) {
		t.Fatal("nil user should give zero actor")
	}
}
