package services

import (
	"net/http"
	"testing"

	"github.com/travelit/backend/internal/models"
)

func TestSendRequest_BothDirectionsYieldOneRow(t *testing.T) {
	f := newFixture(t)
	alice := f.createUser(t, "alice")
	bob := f.createUser(t, "bob")

	if err := f.friends.SendRequest(bob.ID, alice.ID); err != nil {
		t.Fatalf("SendRequest() error = %v", err)
	}
	assertStatus(t, f.friends.SendRequest(alice.ID, bob.ID), http.StatusConflict)
	assertStatus(t, f.friends.SendRequest(bob.ID, alice.ID), http.StatusConflict)

	var rows []models.Friendship
	f.db.Find(&rows)
	if len(rows) != 1 {
		t.Fatalf("expected one stored relationship, got %d", len(rows))
	}
	one, two := models.CanonicalPair(alice.ID, bob.ID)
	if rows[0].UserOneID != one || rows[0].UserTwoID != two {
		t.Errorf("pair not canonical: (%d, %d)", rows[0].UserOneID, rows[0].UserTwoID)
	}
	if rows[0].ActionUserID != bob.ID || rows[0].Status != models.FriendshipPending {
		t.Errorf("unexpected row %+v", rows[0])
	}
}

func TestSendRequest_Invalid(t *testing.T) {
	f := newFixture(t)
	alice := f.createUser(t, "alice")

	assertStatus(t, f.friends.SendRequest(alice.ID, alice.ID), http.StatusBadRequest)
	assertStatus(t, f.friends.SendRequest(alice.ID, 9999), http.StatusNotFound)
}

func TestAccept(t *testing.T) {
	f := newFixture(t)
	alice := f.createUser(t, "alice")
	bob := f.createUser(t, "bob")

	if err := f.friends.SendRequest(alice.ID, bob.ID); err != nil {
		t.Fatal(err)
	}
	if err := f.friends.Accept(bob.ID, alice.ID); err != nil {
		t.Fatalf("Accept() error = %v", err)
	}

	var row models.Friendship
	f.db.First(&row)
	if row.Status != models.FriendshipAccepted || row.ActionUserID != bob.ID {
		t.Errorf("unexpected row after accept %+v", row)
	}

	// accepting again, or accepting a pair that does not exist, is a no-op
	if err := f.friends.Accept(bob.ID, alice.ID); err != nil {
		t.Errorf("repeated Accept() error = %v", err)
	}
	if err := f.friends.Accept(bob.ID, 9999); err != nil {
		t.Errorf("Accept() on missing pair error = %v", err)
	}
}

func TestAccept_RequesterCannotAcceptOwnRequest(t *testing.T) {
	f := newFixture(t)
	alice := f.createUser(t, "alice")
	bob := f.createUser(t, "bob")

	if err := f.friends.SendRequest(alice.ID, bob.ID); err != nil {
		t.Fatal(err)
	}
	if err := f.friends.Accept(alice.ID, bob.ID); err != nil {
		t.Fatalf("Accept() by requester error = %v", err)
	}

	var row models.Friendship
	f.db.First(&row)
	if row.Status != models.FriendshipPending || row.ActionUserID != alice.ID {
		t.Errorf("requester accept must leave the row pending, got %+v", row)
	}

	friends, err := f.friends.ListFriends(bob.ID, bob.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(friends) != 0 {
		t.Errorf("bob never accepted, friends = %+v", friends)
	}

	// the addressee can still accept afterwards
	if err := f.friends.Accept(bob.ID, alice.ID); err != nil {
		t.Fatal(err)
	}
	f.db.First(&row)
	if row.Status != models.FriendshipAccepted {
		t.Errorf("status = %q after addressee accept", row.Status)
	}
}

func TestRemove_FromPendingAndAccepted(t *testing.T) {
	tests := []struct {
		name   string
		accept bool
	}{
		{"pending", false},
		{"accepted", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			alice := f.createUser(t, "alice")
			bob := f.createUser(t, "bob")

			if err := f.friends.SendRequest(alice.ID, bob.ID); err != nil {
				t.Fatal(err)
			}
			if tt.accept {
				if err := f.friends.Accept(bob.ID, alice.ID); err != nil {
					t.Fatal(err)
				}
			}

			if err := f.friends.Remove(bob.ID, alice.ID); err != nil {
				t.Fatalf("Remove() error = %v", err)
			}
			if n := f.count(t, &models.Friendship{}, ""); n != 0 {
				t.Errorf("rows left = %d, expected 0", n)
			}
			assertStatus(t, f.friends.Remove(alice.ID, bob.ID), http.StatusNotFound)
		})
	}
}

func TestListFriends(t *testing.T) {
	f := newFixture(t)
	alice := f.createUser(t, "alice")
	bob := f.createUser(t, "bob")
	carol := f.createUser(t, "carol")
	dave := f.createUser(t, "dave")

	// bob accepted, carol accepted (reverse direction), dave still pending
	for _, other := range []uint{bob.ID, dave.ID} {
		if err := f.friends.SendRequest(alice.ID, other); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.friends.SendRequest(carol.ID, alice.ID); err != nil {
		t.Fatal(err)
	}
	if err := f.friends.Accept(bob.ID, alice.ID); err != nil {
		t.Fatal(err)
	}
	if err := f.friends.Accept(alice.ID, carol.ID); err != nil {
		t.Fatal(err)
	}

	friends, err := f.friends.ListFriends(alice.ID, alice.ID)
	if err != nil {
		t.Fatalf("ListFriends() error = %v", err)
	}
	if len(friends) != 2 || friends[0].Username != "bob" || friends[1].Username != "carol" {
		t.Fatalf("unexpected friends %+v", friends)
	}
	if friends[0].Email != "bob@example.com" {
		t.Errorf("friend email = %q", friends[0].Email)
	}

	_, err = f.friends.ListFriends(bob.ID, alice.ID)
	assertStatus(t, err, http.StatusForbidden)
	if n := f.count(t, &models.SystemLog{}, "module = ? AND level = ?", "access", "warning"); n != 1 {
		t.Errorf("expected the denial to be logged once, got %d", n)
	}
}

func TestListPendingIncoming(t *testing.T) {
	f := newFixture(t)
	alice := f.createUser(t, "alice")
	bob := f.createUser(t, "bob")
	carol := f.createUser(t, "carol")

	// incoming from bob, outgoing to carol
	if err := f.friends.SendRequest(bob.ID, alice.ID); err != nil {
		t.Fatal(err)
	}
	if err := f.friends.SendRequest(alice.ID, carol.ID); err != nil {
		t.Fatal(err)
	}

	pending, err := f.friends.ListPendingIncoming(alice.ID)
	if err != nil {
		t.Fatalf("ListPendingIncoming() error = %v", err)
	}
	if len(pending) != 1 || pending[0].ID != bob.ID {
		t.Fatalf("expected only bob's request, got %+v", pending)
	}

	carolPending, _ := f.friends.ListPendingIncoming(carol.ID)
	if len(carolPending) != 1 || carolPending[0].ID != alice.ID {
		t.Errorf("carol should see alice's request, got %+v", carolPending)
	}
}
