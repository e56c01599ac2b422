package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/tavolo-pos/api/internal/cart"
)

func testResolver(id string) cart.ItemModifier {
	return cart.ItemModifier{ID: id, Name: "Modifier " + id}
}

func validOrder() cart.OrderSnapshot {
	return cart.OrderSnapshot{
		ID:        "order-1",
		OrderType: "DINE_IN",
		TableID:   "table-1",
		Items: []cart.OrderItemRow{
			{ID: "r1", ProductID: "p1", BasePrice: 10, PreparationStatus: "PENDING"},
		},
	}
}

func TestManagerLifecycle(t *testing.T) {
	m := NewManager(testResolver)

	sess := m.Create("user-1")
	if sess.UserID != "user-1" {
		t.Errorf("user id: got %q", sess.UserID)
	}

	got, ok := m.Get(sess.ID)
	if !ok || got != sess {
		t.Fatal("created session not retrievable")
	}

	if !m.Close(sess.ID) {
		t.Error("close should report success for a live session")
	}
	if _, ok := m.Get(sess.ID); ok {
		t.Error("closed session still retrievable")
	}
	if m.Close(sess.ID) {
		t.Error("double close should report false")
	}
}

func TestLoadOpensEditMode(t *testing.T) {
	m := NewManager(testResolver)
	sess := m.Load("user-1", validOrder())

	sess.With(func(c *cart.Cart) error {
		if c.Mode() != cart.ModeEdit {
			t.Errorf("mode: got %s, want EDIT", c.Mode())
		}
		if c.OrderID() != "order-1" {
			t.Errorf("order id: got %q", c.OrderID())
		}
		return nil
	})
}

func TestConfirmBuildsPayloadAndSubmits(t *testing.T) {
	m := NewManager(testResolver)
	sess := m.Load("user-1", validOrder())

	var submitted *cart.Payload
	payload, err := sess.Confirm(context.Background(), func(ctx context.Context, p cart.Payload) error {
		submitted = &p
		return nil
	})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if payload == nil || submitted == nil {
		t.Fatal("payload not built or not submitted")
	}
	if submitted.UserID != "user-1" {
		t.Errorf("user id: got %q", submitted.UserID)
	}
}

func TestConfirmRecapturesBaseline(t *testing.T) {
	m := NewManager(testResolver)
	sess := m.Load("user-1", validOrder())

	sess.With(func(c *cart.Cart) error {
		c.SetNotes("changed")
		if !c.HasUnsavedChanges() {
			t.Fatal("mutation should mark the session dirty")
		}
		return nil
	})

	if _, err := sess.Confirm(context.Background(), nil); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	sess.With(func(c *cart.Cart) error {
		if c.HasUnsavedChanges() {
			t.Error("confirmed state becomes the new baseline")
		}
		return nil
	})
}

func TestConfirmValidationFailure(t *testing.T) {
	m := NewManager(testResolver)
	sess := m.Create("user-1") // empty cart, no table

	_, err := sess.Confirm(context.Background(), nil)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Result.IsValid || len(verr.Result.Errors) == 0 {
		t.Errorf("result should carry the gate messages: %+v", verr.Result)
	}
}

func TestConfirmRequiresUser(t *testing.T) {
	m := NewManager(testResolver)
	sess := m.Create("")

	if _, err := sess.Confirm(context.Background(), nil); !errors.Is(err, ErrMissingUser) {
		t.Errorf("expected ErrMissingUser, got %v", err)
	}
}

func TestConfirmSubmitFailureKeepsDirtyState(t *testing.T) {
	m := NewManager(testResolver)
	sess := m.Load("user-1", validOrder())
	sess.With(func(c *cart.Cart) error {
		c.SetNotes("changed")
		return nil
	})

	submitErr := errors.New("order service unavailable")
	_, err := sess.Confirm(context.Background(), func(ctx context.Context, p cart.Payload) error {
		return submitErr
	})
	if !errors.Is(err, submitErr) {
		t.Fatalf("expected wrapped submit error, got %v", err)
	}

	sess.With(func(c *cart.Cart) error {
		if !c.HasUnsavedChanges() {
			t.Error("failed submit must not recapture the baseline")
		}
		return nil
	})
}

func TestConfirmRejectsConcurrentSubmission(t *testing.T) {
	m := NewManager(testResolver)
	sess := m.Load("user-1", validOrder())

	started := make(chan struct{})
	release := make(chan struct{})
	slowSubmit := func(ctx context.Context, p cart.Payload) error {
		close(started)
		<-release
		return nil
	}

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = sess.Confirm(context.Background(), slowSubmit)
	}()

	<-started
	_, secondErr := sess.Confirm(context.Background(), nil)
	close(release)
	wg.Wait()

	if firstErr != nil {
		t.Errorf("first confirm should succeed, got %v", firstErr)
	}
	if !errors.Is(secondErr, ErrConfirmInProgress) {
		t.Errorf("second confirm: expected ErrConfirmInProgress, got %v", secondErr)
	}
}

func TestConfirmCanRetryAfterFailure(t *testing.T) {
	m := NewManager(testResolver)
	sess := m.Load("user-1", validOrder())

	_, err := sess.Confirm(context.Background(), func(ctx context.Context, p cart.Payload) error {
		return errors.New("transient")
	})
	if err == nil {
		t.Fatal("expected first confirm to fail")
	}

	if _, err := sess.Confirm(context.Background(), nil); err != nil {
		t.Errorf("guard should release after a failed confirm, got %v", err)
	}
}
