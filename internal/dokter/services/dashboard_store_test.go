package services

import (
	"testing"
	"time"

	"github.com/c14220110/poliklinik-dashboard/internal/dokter/models"
)

func TestDashboardStore_SnapshotIsACopy(t *testing.T) {
	s := NewDashboardStore()
	s.Update(func(st *models.DashboardState) {
		st.Entries = []models.QueueEntry{{ID: 1, QueueNumber: "1"}}
	})

	snap := s.Snapshot()
	snap.Entries[0].QueueNumber = "changed"
	if got := s.Snapshot().Entries[0].QueueNumber; got != "1" {
		t.Errorf("store state changed through snapshot: %q", got)
	}
}

func TestDashboardStore_SubscribeAndUnsubscribe(t *testing.T) {
	s := NewDashboardStore()
	var got []models.DashboardState
	unsub := s.Subscribe(func(st models.DashboardState) { got = append(got, st) })

	s.Notify(models.NoticeInfo, "hello")
	unsub()
	s.Notify(models.NoticeInfo, "ignored")

	if len(got) != 1 {
		t.Fatalf("expected 1 update, got %d", len(got))
	}
	if got[0].Notice == nil || got[0].Notice.Message != "hello" {
		t.Errorf("unexpected notice: %+v", got[0].Notice)
	}
}

func TestDashboardStore_SubscriberMayReadStore(t *testing.T) {
	s := NewDashboardStore()
	done := false
	s.Subscribe(func(models.DashboardState) {
		_ = s.Snapshot()
		done = true
	})
	s.Update(func(st *models.DashboardState) { st.CallNextDisabled = true })
	if !done {
		t.Error("subscriber not called")
	}
}

func TestDashboardStore_DeliveryFollowsApplyOrder(t *testing.T) {
	s := NewDashboardStore()
	started := make(chan struct{})
	release := make(chan struct{})
	var delivered []string
	s.Subscribe(func(st models.DashboardState) {
		msg := st.Notice.Message
		if msg == "A" {
			close(started)
			<-release
		}
		delivered = append(delivered, msg)
	})

	firstDone := make(chan struct{})
	go func() {
		s.Notify(models.NoticeInfo, "A")
		close(firstDone)
	}()
	<-started

	secondDone := make(chan struct{})
	go func() {
		s.Notify(models.NoticeInfo, "B")
		close(secondDone)
	}()

	select {
	case <-secondDone:
		t.Fatal("second update finished while the first was still being delivered")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	<-firstDone
	<-secondDone

	if len(delivered) != 2 || delivered[0] != "A" || delivered[1] != "B" {
		t.Fatalf("expected deliveries [A B], got %v", delivered)
	}
	if got := s.Snapshot().Notice.Message; got != delivered[len(delivered)-1] {
		t.Errorf("store holds %q, last delivered %q", got, delivered[len(delivered)-1])
	}
}
