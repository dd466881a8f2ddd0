package model

import (
	"errors"
	"testing"
)

func TestCanTransition(t *testing.T) {
	all := []OrderStatus{OrderPending, OrderOrdered, OrderReceived, OrderCancelled, OrderRefused}
	legal := map[[2]OrderStatus]bool{
		{OrderPending, OrderOrdered}:   true,
		{OrderPending, OrderReceived}:  true,
		{OrderPending, OrderCancelled}: true,
		{OrderPending, OrderRefused}:   true,
		{OrderOrdered, OrderReceived}:  true,
		{OrderOrdered, OrderCancelled}: true,
	}

	for _, from := range all {
		for _, to := range all {
			want := legal[[2]OrderStatus{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestOrderStatusPredicates(t *testing.T) {
	if !OrderPending.Open() || !OrderOrdered.Open() || OrderReceived.Open() {
		t.Error("Open() wrong")
	}
	for _, s := range []OrderStatus{OrderReceived, OrderCancelled, OrderRefused} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	if OrderPending.Terminal() {
		t.Error("pending should not be terminal")
	}
	if OrderStatus("lost").Valid() {
		t.Error("unknown status reported valid")
	}
}

func TestAuthorizeTransition(t *testing.T) {
	order := &OrderRequest{Status: OrderPending, RequestedByGroup: "Team A"}
	member := Actor{Name: "m", Group: "Team A"}
	other := Actor{Name: "o", Group: "Team B"}
	admin := Actor{Name: "a", Group: "Team B", IsAdmin: true}

	for _, to := range []OrderStatus{OrderOrdered, OrderReceived, OrderRefused} {
		if err := AuthorizeTransition(order, to, member); !errors.Is(err, ErrForbidden) {
			t.Errorf("member -> %s: expected forbidden, got %v", to, err)
		}
		if err := AuthorizeTransition(order, to, admin); err != nil {
			t.Errorf("admin -> %s: %v", to, err)
		}
	}

	if err := AuthorizeTransition(order, OrderCancelled, member); err != nil {
		t.Errorf("same group cancel: %v", err)
	}
	if err := AuthorizeTransition(order, OrderCancelled, other); !errors.Is(err, ErrForbidden) {
		t.Errorf("other group cancel: expected forbidden, got %v", err)
	}
	if err := AuthorizeTransition(order, OrderCancelled, admin); err != nil {
		t.Errorf("admin cancel: %v", err)
	}
	if err := AuthorizeTransition(order, OrderPending, admin); !errors.Is(err, ErrConflict) {
		t.Errorf("back to pending: expected conflict, got %v", err)
	}
}
