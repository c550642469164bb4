package plugin

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/xraph/roster/assignment"
	"github.com/xraph/roster/id"
)

// testPlugin implements Plugin + AssignmentCreated + OperationFailed.
type testPlugin struct {
	createdCalled bool
	failedOp      string
}

func (t *testPlugin) Name() string { return "test-plugin" }

func (t *testPlugin) OnAssignmentCreated(_ context.Context, _ *assignment.Assignment) error {
	t.createdCalled = true
	return nil
}

func (t *testPlugin) OnOperationFailed(_ context.Context, op string, _ *assignment.Error) error {
	t.failedOp = op
	return nil
}

// minimalPlugin only implements Plugin (no hooks).
type minimalPlugin struct{}

func (m *minimalPlugin) Name() string { return "minimal" }

// failingPlugin returns an error from its hook; the registry must swallow it.
type failingPlugin struct{}

func (f *failingPlugin) Name() string { return "failing" }

func (f *failingPlugin) OnCollectionInvalidated(_ context.Context) error {
	return errors.New("hook blew up")
}

func TestRegistryDispatch(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(slog.Default())

	tp := &testPlugin{}
	reg.Register(tp)
	reg.Register(&minimalPlugin{})

	if len(reg.Plugins()) != 2 {
		t.Fatalf("expected 2 plugins, got %d", len(reg.Plugins()))
	}

	// Should dispatch AssignmentCreated to testPlugin only.
	reg.EmitAssignmentCreated(ctx, &assignment.Assignment{
		ID: id.NewAssignmentID(), UserID: 1, RoleID: 10, StoreID: "store_1",
	})
	if !tp.createdCalled {
		t.Fatal("OnAssignmentCreated was not called")
	}

	// Should dispatch OperationFailed with the op name.
	reg.EmitOperationFailed(ctx, "assign", assignment.NewError("boom", time.Now()))
	if tp.failedOp != "assign" {
		t.Fatalf("expected failed op %q, got %q", "assign", tp.failedOp)
	}

	// Should not panic on hooks with no listeners.
	reg.EmitAssignmentRemoved(ctx, &assignment.RemoveRequest{UserID: 1, RoleID: 10, StoreID: "store_1"})
	reg.EmitStatusToggled(ctx, &assignment.ToggleRequest{UserID: 1, RoleID: 10, StoreID: "store_1"})
	reg.EmitCollectionInvalidated(ctx)
}

func TestRegistrySwallowsHookErrors(t *testing.T) {
	reg := NewRegistry(slog.Default())
	reg.Register(&failingPlugin{})

	// Must not panic or propagate.
	reg.EmitCollectionInvalidated(context.Background())
}
