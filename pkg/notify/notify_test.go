package notify

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/angelmondragon/iotfarm-web/pkg/config"
	"github.com/angelmondragon/iotfarm-web/pkg/enums"
)

type fakeStore struct {
	flags map[string]time.Time
	lists map[string][]string
	now   *time.Time
}

func newFakeStore(now *time.Time) *fakeStore {
	return &fakeStore{flags: map[string]time.Time{}, lists: map[string][]string{}, now: now}
}

func (f *fakeStore) SetNX(_ context.Context, key string, _ any, ttl time.Duration) (bool, error) {
	if exp, ok := f.flags[key]; ok && f.now.Before(exp) {
		return false, nil
	}
	f.flags[key] = f.now.Add(ttl)
	return true, nil
}

func (f *fakeStore) PushCapped(_ context.Context, key string, value any, max int64, _ time.Duration) error {
	var s string
	switch v := value.(type) {
	case []byte:
		s = string(v)
	default:
		s = fmt.Sprint(v)
	}
	list := append(f.lists[key], s)
	if int64(len(list)) > max {
		list = list[int64(len(list))-max:]
	}
	f.lists[key] = list
	return nil
}

func (f *fakeStore) PopAll(_ context.Context, key string, count int) ([]string, error) {
	list := f.lists[key]
	if count > len(list) {
		count = len(list)
	}
	out := list[:count]
	f.lists[key] = list[count:]
	return out, nil
}

func (f *fakeStore) ToastKey(identity string) string { return "toast:" + identity }

func (f *fakeStore) ToastFingerprintKey(identity, fp string) string {
	return "toast:" + identity + ":" + fp
}

func newTestService(t *testing.T, now *time.Time) (*Service, *fakeStore) {
	t.Helper()
	store := newFakeStore(now)
	svc, err := NewService(store, config.ToastConfig{VisibleFor: 3 * time.Second, MaxPending: 5})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	svc.now = func() time.Time { return *now }
	return svc, store
}

func TestPushDeduplicatesWhileVisible(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, &now)
	ctx := context.Background()

	queued, err := svc.Push(ctx, "a@x.com", Success("Added to cart"))
	if err != nil || !queued {
		t.Fatalf("first push: queued=%v err=%v", queued, err)
	}
	queued, err = svc.Push(ctx, "a@x.com", Success("Added to cart"))
	if err != nil || queued {
		t.Fatalf("duplicate push should be dropped: queued=%v err=%v", queued, err)
	}
	if queued, _ := svc.Push(ctx, "a@x.com", Error("Added to cart")); !queued {
		t.Fatalf("different level must not be deduplicated")
	}
	if queued, _ := svc.Push(ctx, "b@x.com", Success("Added to cart")); !queued {
		t.Fatalf("dedupe must be per identity")
	}

	now = now.Add(4 * time.Second)
	if queued, _ := svc.Push(ctx, "a@x.com", Success("Added to cart")); !queued {
		t.Fatalf("toast should be accepted again once the previous one expired")
	}

	toasts, err := svc.Drain(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if len(toasts) != 3 {
		t.Fatalf("expected 3 toasts, got %+v", toasts)
	}
	if toasts[0].Level != enums.ToastLevelSuccess || toasts[1].Level != enums.ToastLevelError {
		t.Fatalf("unexpected order %+v", toasts)
	}
	if toasts[0].CreatedAt.IsZero() {
		t.Fatalf("created_at not stamped")
	}

	again, _ := svc.Drain(ctx, "a@x.com")
	if len(again) != 0 {
		t.Fatalf("drain must clear the queue, got %+v", again)
	}
}

func TestPushRejectsBadInput(t *testing.T) {
	now := time.Now()
	svc, store := newTestService(t, &now)
	ctx := context.Background()

	if queued, err := svc.Push(ctx, "", Success("x")); err != nil || queued {
		t.Fatalf("anonymous push must be a silent no-op")
	}
	if _, err := svc.Push(ctx, "a@x.com", Toast{Level: "loud", Message: "x"}); err == nil {
		t.Fatalf("expected invalid level error")
	}
	if _, err := svc.Push(ctx, "a@x.com", Info(" ")); err == nil {
		t.Fatalf("expected empty message error")
	}
	if len(store.lists) != 0 {
		t.Fatalf("nothing should be queued")
	}
}

func TestDrainSkipsCorruptEntries(t *testing.T) {
	now := time.Now()
	svc, store := newTestService(t, &now)
	store.lists["toast:a@x.com"] = []string{"{bad", `{"level":"info","message":"hi"}`}

	toasts, err := svc.Drain(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if len(toasts) != 1 || toasts[0].Message != "hi" {
		t.Fatalf("unexpected toasts %+v", toasts)
	}
}

func TestFingerprintStable(t *testing.T) {
	a := Fingerprint(Success("Quantity updated"))
	if a != Fingerprint(Success("Quantity updated")) || len(a) != 32 {
		t.Fatalf("fingerprint not stable: %s", a)
	}
	if a == Fingerprint(Info("Quantity updated")) {
		t.Fatalf("level must be part of the fingerprint")
	}
}
