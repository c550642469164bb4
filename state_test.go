package roster

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/xraph/roster/assignment"
	"github.com/xraph/roster/id"
)

// fakeService scripts each Service method for one test.
type fakeService struct {
	assignFn    func(ctx context.Context, req *assignment.AssignRequest) (*assignment.Assignment, error)
	removeFn    func(ctx context.Context, req *assignment.RemoveRequest) error
	toggleFn    func(ctx context.Context, req *assignment.ToggleRequest) error
	bulkFn      func(ctx context.Context, req *assignment.BulkAssignRequest) ([]*assignment.Assignment, error)
	listStoreFn func(ctx context.Context, storeID string, params *assignment.ListParams) ([]*assignment.Assignment, error)
	listUserFn  func(ctx context.Context, userID int64, params *assignment.ListParams) ([]*assignment.Assignment, error)
}

var _ assignment.Service = (*fakeService)(nil)

func (f *fakeService) Assign(ctx context.Context, req *assignment.AssignRequest) (*assignment.Assignment, error) {
	if f.assignFn == nil {
		return nil, errors.New("assign not scripted")
	}
	return f.assignFn(ctx, req)
}

func (f *fakeService) Remove(ctx context.Context, req *assignment.RemoveRequest) error {
	if f.removeFn == nil {
		return errors.New("remove not scripted")
	}
	return f.removeFn(ctx, req)
}

func (f *fakeService) ToggleStatus(ctx context.Context, req *assignment.ToggleRequest) error {
	if f.toggleFn == nil {
		return errors.New("toggle not scripted")
	}
	return f.toggleFn(ctx, req)
}

func (f *fakeService) BulkAssign(ctx context.Context, req *assignment.BulkAssignRequest) ([]*assignment.Assignment, error) {
	if f.bulkFn == nil {
		return nil, errors.New("bulk assign not scripted")
	}
	return f.bulkFn(ctx, req)
}

func (f *fakeService) ListByStore(ctx context.Context, storeID string, params *assignment.ListParams) ([]*assignment.Assignment, error) {
	if f.listStoreFn == nil {
		return nil, errors.New("list by store not scripted")
	}
	return f.listStoreFn(ctx, storeID, params)
}

func (f *fakeService) ListByUser(ctx context.Context, userID int64, params *assignment.ListParams) ([]*assignment.Assignment, error) {
	if f.listUserFn == nil {
		return nil, errors.New("list by user not scripted")
	}
	return f.listUserFn(ctx, userID, params)
}

// echoAssign scripts Assign to mint a record from the request, the way a
// real backend would.
func echoAssign(ctx context.Context, req *assignment.AssignRequest) (*assignment.Assignment, error) {
	now := time.Now()
	return &assignment.Assignment{
		ID:        id.NewAssignmentID(),
		UserID:    req.UserID,
		RoleID:    req.RoleID,
		StoreID:   req.StoreID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func echoBulk(ctx context.Context, req *assignment.BulkAssignRequest) ([]*assignment.Assignment, error) {
	out := make([]*assignment.Assignment, 0, len(req.Items))
	for i := range req.Items {
		a, _ := echoAssign(ctx, &req.Items[i])
		out = append(out, a)
	}
	return out, nil
}

func newTestState(t *testing.T, svc assignment.Service, opts ...Option) *State {
	t.Helper()
	st, err := NewState(append([]Option{WithService(svc)}, opts...)...)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	return st
}

func TestNewStateRequiresService(t *testing.T) {
	if _, err := NewState(); err == nil {
		t.Fatal("expected error when no service is configured")
	}
}

func TestAssignPopulatesAllViews(t *testing.T) {
	ctx := context.Background()
	st := newTestState(t, &fakeService{assignFn: echoAssign})

	created, err := st.Assign(ctx, &assignment.AssignRequest{UserID: 1, RoleID: 10, StoreID: "store_1"})
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if created.ID.IsNil() {
		t.Fatal("expected a minted assignment ID")
	}

	if got := st.AllAssignments(); len(got) != 1 || got[0].UserID != 1 {
		t.Fatalf("primary collection = %+v, want one record for user 1", got)
	}
	if got := st.StoreAssignments("store_1"); len(got) != 1 {
		t.Fatalf("store index = %+v, want one record", got)
	}
	if got := st.UserAssignments(1); len(got) != 1 {
		t.Fatalf("user index = %+v, want one record", got)
	}

	op := st.Operation(OpAssign)
	if op.Loading != LoadingFulfilled {
		t.Fatalf("assign loading = %q, want fulfilled", op.Loading)
	}
	if op.Err != nil {
		t.Fatalf("assign error = %v, want nil", op.Err)
	}

	if _, ok := st.LastUpdated(); !ok {
		t.Fatal("aggregate timestamp not stamped")
	}
	if _, ok := st.StoreUpdatedAt("store_1"); !ok {
		t.Fatal("store timestamp not stamped")
	}
	if _, ok := st.UserUpdatedAt(1); !ok {
		t.Fatal("user timestamp not stamped")
	}
}

func TestAssignFailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	st := newTestState(t, &fakeService{
		assignFn: func(context.Context, *assignment.AssignRequest) (*assignment.Assignment, error) {
			return nil, errors.New("backend down")
		},
	})

	if _, err := st.Assign(ctx, &assignment.AssignRequest{UserID: 1, RoleID: 10, StoreID: "store_1"}); err == nil {
		t.Fatal("expected Assign to fail")
	}

	if got := st.AllAssignments(); len(got) != 0 {
		t.Fatalf("primary collection = %+v, want empty", got)
	}
	if got := st.StoreAssignments("store_1"); len(got) != 0 {
		t.Fatalf("store index = %+v, want empty", got)
	}
	if _, ok := st.LastUpdated(); ok {
		t.Fatal("aggregate timestamp stamped despite failure")
	}

	op := st.Operation(OpAssign)
	if op.Loading != LoadingRejected {
		t.Fatalf("assign loading = %q, want rejected", op.Loading)
	}
	if op.Err == nil {
		t.Fatal("expected a recorded error")
	}
}

// Every record in the primary collection must appear in exactly its own
// store bucket and user bucket, and the totals must agree.
func TestIndexConsistency(t *testing.T) {
	ctx := context.Background()
	st := newTestState(t, &fakeService{assignFn: echoAssign, bulkFn: echoBulk})

	for i := int64(1); i <= 3; i++ {
		if _, err := st.Assign(ctx, &assignment.AssignRequest{
			UserID: i, RoleID: 10, StoreID: fmt.Sprintf("store_%d", i%2),
		}); err != nil {
			t.Fatalf("Assign: %v", err)
		}
	}
	if _, err := st.BulkAssign(ctx, &assignment.BulkAssignRequest{Items: []assignment.AssignRequest{
		{UserID: 1, RoleID: 11, StoreID: "store_0"},
		{UserID: 2, RoleID: 11, StoreID: "store_1"},
	}}); err != nil {
		t.Fatalf("BulkAssign: %v", err)
	}

	all := st.AllAssignments()
	if len(all) != 5 {
		t.Fatalf("primary collection has %d records, want 5", len(all))
	}

	indexed := 0
	for _, a := range all {
		found := false
		for _, b := range st.StoreAssignments(a.StoreID) {
			if b.ID == a.ID {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("record %s missing from store bucket %q", a.ID, a.StoreID)
		}
		found = false
		for _, b := range st.UserAssignments(a.UserID) {
			if b.ID == a.ID {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("record %s missing from user bucket %d", a.ID, a.UserID)
		}
		indexed++
	}
	if indexed != len(all) {
		t.Fatalf("indexed %d of %d records", indexed, len(all))
	}
}

func TestBulkAssignSharesOneTimestamp(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	st := newTestState(t, &fakeService{bulkFn: echoBulk},
		WithNow(func() time.Time { return at }))

	if _, err := st.BulkAssign(ctx, &assignment.BulkAssignRequest{Items: []assignment.AssignRequest{
		{UserID: 1, RoleID: 10, StoreID: "store_a"},
		{UserID: 2, RoleID: 10, StoreID: "store_b"},
	}}); err != nil {
		t.Fatalf("BulkAssign: %v", err)
	}

	agg, ok := st.LastUpdated()
	if !ok || !agg.Equal(at) {
		t.Fatalf("aggregate timestamp = %v (ok=%v), want %v", agg, ok, at)
	}
	for _, storeID := range []string{"store_a", "store_b"} {
		ts, ok := st.StoreUpdatedAt(storeID)
		if !ok || !ts.Equal(at) {
			t.Fatalf("store %q timestamp = %v (ok=%v), want %v", storeID, ts, ok, at)
		}
	}
	for _, userID := range []int64{1, 2} {
		ts, ok := st.UserUpdatedAt(userID)
		if !ok || !ts.Equal(at) {
			t.Fatalf("user %d timestamp = %v (ok=%v), want %v", userID, ts, ok, at)
		}
	}
}

func TestBulkAssignFailurePreservesError(t *testing.T) {
	ctx := context.Background()
	reported := time.Date(2026, 8, 24, 9, 30, 0, 0, time.UTC)
	st := newTestState(t, &fakeService{
		bulkFn: func(context.Context, *assignment.BulkAssignRequest) ([]*assignment.Assignment, error) {
			return nil, assignment.NewError("conflict", reported)
		},
	})

	if _, err := st.BulkAssign(ctx, &assignment.BulkAssignRequest{Items: []assignment.AssignRequest{
		{UserID: 1, RoleID: 10, StoreID: "store_1"},
	}}); err == nil {
		t.Fatal("expected BulkAssign to fail")
	}

	if got := st.AllAssignments(); len(got) != 0 {
		t.Fatalf("primary collection = %+v, want empty after failed batch", got)
	}

	e := st.ErrorFor(OpBulkAssign)
	if e == nil {
		t.Fatal("expected a recorded bulk assign error")
	}
	if e.Message != "conflict" {
		t.Fatalf("error message = %q, want %q", e.Message, "conflict")
	}
	if !e.Timestamp.Equal(reported) {
		t.Fatalf("error timestamp = %v, want service-reported %v", e.Timestamp, reported)
	}
}

func TestRemoveInvalidatesAggregateFreshness(t *testing.T) {
	ctx := context.Background()
	st := newTestState(t, &fakeService{
		assignFn: echoAssign,
		removeFn: func(context.Context, *assignment.RemoveRequest) error { return nil },
	})

	if _, err := st.Assign(ctx, &assignment.AssignRequest{UserID: 1, RoleID: 10, StoreID: "store_1"}); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if err := st.Remove(ctx, &assignment.RemoveRequest{UserID: 1, RoleID: 10, StoreID: "store_1"}); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	// No entity came back, so the stale record stays visible and only the
	// aggregate timestamp is dropped.
	if got := st.AllAssignments(); len(got) != 1 {
		t.Fatalf("primary collection = %+v, want the stale record kept", got)
	}
	if _, ok := st.LastUpdated(); ok {
		t.Fatal("aggregate timestamp survived a remove")
	}
	if !st.Stale() {
		t.Fatal("container should report stale after a remove")
	}
	if _, ok := st.StoreUpdatedAt("store_1"); !ok {
		t.Fatal("store timestamp should survive a remove")
	}
	if st.Operation(OpRemove).Loading != LoadingFulfilled {
		t.Fatalf("remove loading = %q, want fulfilled", st.Operation(OpRemove).Loading)
	}
}

func TestToggleInvalidatesAggregateFreshness(t *testing.T) {
	ctx := context.Background()
	st := newTestState(t, &fakeService{
		assignFn: echoAssign,
		toggleFn: func(context.Context, *assignment.ToggleRequest) error { return nil },
	})

	if _, err := st.Assign(ctx, &assignment.AssignRequest{UserID: 1, RoleID: 10, StoreID: "store_1"}); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if err := st.ToggleStatus(ctx, &assignment.ToggleRequest{UserID: 1, RoleID: 10, StoreID: "store_1"}); err != nil {
		t.Fatalf("ToggleStatus: %v", err)
	}

	if got := st.AllAssignments(); len(got) != 1 || !got[0].IsActive {
		t.Fatalf("primary collection = %+v, want the record unpatched", got)
	}
	if _, ok := st.LastUpdated(); ok {
		t.Fatal("aggregate timestamp survived a toggle")
	}
}

func TestClearStoreAssignmentsIsLocal(t *testing.T) {
	ctx := context.Background()
	st := newTestState(t, &fakeService{assignFn: echoAssign})

	if _, err := st.Assign(ctx, &assignment.AssignRequest{UserID: 1, RoleID: 10, StoreID: "store_1"}); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	st.ClearStoreAssignments("store_1")

	if got := st.StoreAssignments("store_1"); len(got) != 0 {
		t.Fatalf("store bucket = %+v, want evicted", got)
	}
	if _, ok := st.StoreUpdatedAt("store_1"); ok {
		t.Fatal("store timestamp should be evicted with the bucket")
	}
	// Eviction is local: the record stays reachable elsewhere.
	if got := st.AllAssignments(); len(got) != 1 {
		t.Fatalf("primary collection = %+v, want untouched", got)
	}
	if got := st.UserAssignments(1); len(got) != 1 {
		t.Fatalf("user index = %+v, want untouched", got)
	}
	if _, ok := st.LastUpdated(); !ok {
		t.Fatal("aggregate timestamp should survive a scope eviction")
	}
}

func TestResetRestoresInitialState(t *testing.T) {
	ctx := context.Background()
	st := newTestState(t, &fakeService{
		assignFn: echoAssign,
		removeFn: func(context.Context, *assignment.RemoveRequest) error { return errors.New("nope") },
	})

	if _, err := st.Assign(ctx, &assignment.AssignRequest{UserID: 1, RoleID: 10, StoreID: "store_1"}); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	_ = st.Remove(ctx, &assignment.RemoveRequest{UserID: 1, RoleID: 10, StoreID: "store_1"})

	st.Reset()

	if got := st.AllAssignments(); len(got) != 0 {
		t.Fatalf("primary collection = %+v, want empty", got)
	}
	if got := st.UserAssignments(1); len(got) != 0 {
		t.Fatalf("user index = %+v, want empty", got)
	}
	if _, ok := st.LastUpdated(); ok {
		t.Fatal("aggregate timestamp survived reset")
	}
	for _, kind := range OpKinds() {
		op := st.Operation(kind)
		if op.Loading != LoadingIdle {
			t.Fatalf("op %q loading = %q after reset, want idle", kind, op.Loading)
		}
		if op.Err != nil {
			t.Fatalf("op %q error = %v after reset, want nil", kind, op.Err)
		}
	}
}

func TestFetchReplacesBucketKeyedByRequest(t *testing.T) {
	ctx := context.Background()
	var payload []*assignment.Assignment
	st := newTestState(t, &fakeService{
		listStoreFn: func(_ context.Context, storeID string, _ *assignment.ListParams) ([]*assignment.Assignment, error) {
			return payload, nil
		},
		listUserFn: func(_ context.Context, userID int64, _ *assignment.ListParams) ([]*assignment.Assignment, error) {
			return payload, nil
		},
	})

	a, _ := echoAssign(ctx, &assignment.AssignRequest{UserID: 7, RoleID: 10, StoreID: "store_1"})
	payload = []*assignment.Assignment{a}

	if _, err := st.FetchStoreAssignments(ctx, "store_1", nil); err != nil {
		t.Fatalf("FetchStoreAssignments: %v", err)
	}
	if got := st.StoreAssignments("store_1"); len(got) != 1 {
		t.Fatalf("store bucket = %+v, want one record", got)
	}

	// An empty response still lands in the requested bucket and restamps
	// it: the key comes from the request, not the response contents.
	payload = nil
	if _, err := st.FetchStoreAssignments(ctx, "store_1", nil); err != nil {
		t.Fatalf("FetchStoreAssignments: %v", err)
	}
	if got := st.StoreAssignments("store_1"); len(got) != 0 {
		t.Fatalf("store bucket = %+v, want replaced by empty result", got)
	}
	if _, ok := st.StoreUpdatedAt("store_1"); !ok {
		t.Fatal("empty fetch must still stamp the store timestamp")
	}

	if _, err := st.FetchUserAssignments(ctx, 7, nil); err != nil {
		t.Fatalf("FetchUserAssignments: %v", err)
	}
	if _, ok := st.UserUpdatedAt(7); !ok {
		t.Fatal("empty fetch must still stamp the user timestamp")
	}
	// Fetches are scope-local: the aggregate view stays unstamped.
	if _, ok := st.LastUpdated(); ok {
		t.Fatal("a scoped fetch must not stamp the aggregate timestamp")
	}
}

func TestErrorNormalization(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 8, 24, 8, 0, 0, 0, time.UTC)
	st := newTestState(t, &fakeService{
		assignFn: func(context.Context, *assignment.AssignRequest) (*assignment.Assignment, error) {
			return nil, errors.New("dial tcp: connection refused")
		},
	}, WithNow(func() time.Time { return at }))

	_, _ = st.Assign(ctx, &assignment.AssignRequest{UserID: 1, RoleID: 10, StoreID: "store_1"})

	e := st.ErrorFor(OpAssign)
	if e == nil {
		t.Fatal("expected a normalized error")
	}
	if e.Message != "failed to assign user role" {
		t.Fatalf("message = %q, want synthetic fallback", e.Message)
	}
	if !e.Timestamp.Equal(at) {
		t.Fatalf("timestamp = %v, want clock time %v", e.Timestamp, at)
	}
}

func TestPendingClearsPreviousError(t *testing.T) {
	ctx := context.Background()
	fail := true
	st := newTestState(t, &fakeService{
		assignFn: func(ctx context.Context, req *assignment.AssignRequest) (*assignment.Assignment, error) {
			if fail {
				return nil, errors.New("boom")
			}
			return echoAssign(ctx, req)
		},
	})

	_, _ = st.Assign(ctx, &assignment.AssignRequest{UserID: 1, RoleID: 10, StoreID: "store_1"})
	if st.ErrorFor(OpAssign) == nil {
		t.Fatal("expected an error after the failed attempt")
	}

	fail = false
	if _, err := st.Assign(ctx, &assignment.AssignRequest{UserID: 1, RoleID: 10, StoreID: "store_1"}); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	op := st.Operation(OpAssign)
	if op.Loading != LoadingFulfilled || op.Err != nil {
		t.Fatalf("op = %+v, want fulfilled with no error", op)
	}
}

func TestStaleWithTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	st := newTestState(t, &fakeService{assignFn: echoAssign},
		WithConfig(Config{FreshnessTTL: time.Minute}),
		WithNow(func() time.Time { return now }))

	if !st.Stale() {
		t.Fatal("empty container must report stale")
	}

	if _, err := st.Assign(ctx, &assignment.AssignRequest{UserID: 1, RoleID: 10, StoreID: "store_1"}); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if st.Stale() {
		t.Fatal("freshly stamped container must not report stale")
	}

	now = now.Add(2 * time.Minute)
	if !st.Stale() {
		t.Fatal("container must report stale once the TTL has passed")
	}
}

func TestSelectorsOnEmptyState(t *testing.T) {
	st := newTestState(t, &fakeService{})

	if got := st.AllAssignments(); len(got) != 0 {
		t.Fatalf("AllAssignments = %+v, want empty", got)
	}
	if got := st.StoreAssignments("missing"); len(got) != 0 {
		t.Fatalf("StoreAssignments = %+v, want empty", got)
	}
	if got := st.UserAssignments(42); len(got) != 0 {
		t.Fatalf("UserAssignments = %+v, want empty", got)
	}
	if op := st.Operation(OpToggle); op.Loading != LoadingIdle || op.Err != nil {
		t.Fatalf("Operation = %+v, want idle", op)
	}
	if st.ErrorFor(OpAssign) != nil {
		t.Fatal("ErrorFor on a fresh container must be nil")
	}
	if st.AnyPending() {
		t.Fatal("AnyPending on a fresh container must be false")
	}
	if _, ok := st.StoreUpdatedAt("missing"); ok {
		t.Fatal("StoreUpdatedAt for an unknown store must report !ok")
	}
}

func TestSelectorsReturnCopies(t *testing.T) {
	ctx := context.Background()
	st := newTestState(t, &fakeService{assignFn: echoAssign})

	if _, err := st.Assign(ctx, &assignment.AssignRequest{UserID: 1, RoleID: 10, StoreID: "store_1"}); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	got := st.AllAssignments()
	got[0].StoreID = "mutated"

	if again := st.AllAssignments(); again[0].StoreID != "store_1" {
		t.Fatal("selector exposed internal state to caller mutation")
	}
}

func TestConcurrentAssigns(t *testing.T) {
	ctx := context.Background()
	st := newTestState(t, &fakeService{assignFn: echoAssign})

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, _ = st.Assign(ctx, &assignment.AssignRequest{
				UserID: int64(i % 5), RoleID: 10, StoreID: fmt.Sprintf("store_%d", i%3),
			})
		}(i)
	}
	wg.Wait()

	all := st.AllAssignments()
	if len(all) != n {
		t.Fatalf("primary collection has %d records, want %d", len(all), n)
	}
	indexed := 0
	for storeID := 0; storeID < 3; storeID++ {
		indexed += len(st.StoreAssignments(fmt.Sprintf("store_%d", storeID)))
	}
	if indexed != n {
		t.Fatalf("store buckets hold %d records, want %d", indexed, n)
	}
	if st.AnyPending() {
		t.Fatal("no operation should be pending after all goroutines settled")
	}
}

// recordingPlugin captures every hook it receives.
type recordingPlugin struct {
	mu          sync.Mutex
	created     int
	bulkBatches int
	removed     int
	toggled     int
	invalidated int
	failedOps   []string
}

func (p *recordingPlugin) Name() string { return "recorder" }

func (p *recordingPlugin) OnAssignmentCreated(_ context.Context, _ *assignment.Assignment) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created++
	return nil
}

func (p *recordingPlugin) OnAssignmentsBulkCreated(_ context.Context, _ []*assignment.Assignment) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bulkBatches++
	return nil
}

func (p *recordingPlugin) OnAssignmentRemoved(_ context.Context, _ *assignment.RemoveRequest) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removed++
	return nil
}

func (p *recordingPlugin) OnStatusToggled(_ context.Context, _ *assignment.ToggleRequest) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.toggled++
	return nil
}

func (p *recordingPlugin) OnCollectionInvalidated(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.invalidated++
	return nil
}

func (p *recordingPlugin) OnOperationFailed(_ context.Context, op string, _ *assignment.Error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failedOps = append(p.failedOps, op)
	return nil
}

func TestPluginHooks(t *testing.T) {
	ctx := context.Background()
	rec := &recordingPlugin{}
	st := newTestState(t, &fakeService{
		assignFn: echoAssign,
		bulkFn:   echoBulk,
		removeFn: func(context.Context, *assignment.RemoveRequest) error { return nil },
		toggleFn: func(context.Context, *assignment.ToggleRequest) error { return nil },
		listStoreFn: func(context.Context, string, *assignment.ListParams) ([]*assignment.Assignment, error) {
			return nil, errors.New("down")
		},
	}, WithPlugin(rec))

	if _, err := st.Assign(ctx, &assignment.AssignRequest{UserID: 1, RoleID: 10, StoreID: "store_1"}); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if _, err := st.BulkAssign(ctx, &assignment.BulkAssignRequest{Items: []assignment.AssignRequest{
		{UserID: 2, RoleID: 10, StoreID: "store_1"},
	}}); err != nil {
		t.Fatalf("BulkAssign: %v", err)
	}
	if err := st.Remove(ctx, &assignment.RemoveRequest{UserID: 1, RoleID: 10, StoreID: "store_1"}); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := st.ToggleStatus(ctx, &assignment.ToggleRequest{UserID: 2, RoleID: 10, StoreID: "store_1"}); err != nil {
		t.Fatalf("ToggleStatus: %v", err)
	}
	_, _ = st.FetchStoreAssignments(ctx, "store_1", nil)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.created != 1 {
		t.Fatalf("created hooks = %d, want 1", rec.created)
	}
	if rec.bulkBatches != 1 {
		t.Fatalf("bulk hooks = %d, want 1", rec.bulkBatches)
	}
	if rec.removed != 1 || rec.toggled != 1 {
		t.Fatalf("removed=%d toggled=%d, want 1 each", rec.removed, rec.toggled)
	}
	if rec.invalidated != 2 {
		t.Fatalf("invalidated hooks = %d, want 2 (remove + toggle)", rec.invalidated)
	}
	if len(rec.failedOps) != 1 || rec.failedOps[0] != string(OpFetchStore) {
		t.Fatalf("failed ops = %v, want [%s]", rec.failedOps, OpFetchStore)
	}
}
