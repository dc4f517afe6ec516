package overworld

import (
	"testing"

	"github.com/scawful/yaze-go/internal/yzerr"
)

func TestInsertEntrance_ReusesDeletedSlot(t *testing.T) {
	slots := make([]Entrance, 3)
	for i := range slots {
		slots[i].Deleted = true
	}
	slots[1].Deleted = false // slot 1 already occupied

	idx, err := InsertEntrance(slots, Entrance{EntranceID: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx != 0 {
		t.Errorf("InsertEntrance landed in slot %d, want 0 (first deleted slot)", idx)
	}
	if slots[0].Deleted {
		t.Errorf("inserted slot still marked Deleted")
	}
	if slots[0].EntranceID != 7 {
		t.Errorf("EntranceID = %d, want 7", slots[0].EntranceID)
	}
}

func TestInsertEntrance_SlotsExhausted(t *testing.T) {
	slots := make([]Entrance, 2) // all Deleted=false (zero value)
	_, err := InsertEntrance(slots, Entrance{})
	if k, ok := yzerr.KindOf(err); !ok || k != yzerr.SlotsExhausted {
		t.Fatalf("expected SlotsExhausted, got %v", err)
	}
}

func TestDeleteEntranceAt_SetsFlagWithoutShrinking(t *testing.T) {
	slots := make([]Entrance, 3)
	if err := DeleteEntranceAt(slots, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slots[1].Deleted {
		t.Errorf("slot 1 not marked deleted")
	}
	if len(slots) != 3 {
		t.Errorf("len(slots) = %d, want 3 (delete must never shrink)", len(slots))
	}
}

func TestDeleteEntranceAt_OutOfRange(t *testing.T) {
	slots := make([]Entrance, 2)
	if err := DeleteEntranceAt(slots, 5); err == nil {
		t.Fatalf("expected error for out-of-range index")
	}
}

func TestLiveEntranceCount(t *testing.T) {
	slots := make([]Entrance, 4)
	slots[0].Deleted = true
	slots[2].Deleted = true
	if got := LiveEntranceCount(slots); got != 2 {
		t.Errorf("LiveEntranceCount = %d, want 2", got)
	}
}

func TestEntity_WorldPixelCoords(t *testing.T) {
	e := Entity{X: 3, Y: 5}
	if e.WorldPixelX() != 48 || e.WorldPixelY() != 80 {
		t.Errorf("WorldPixelX/Y = (%d,%d), want (48,80)", e.WorldPixelX(), e.WorldPixelY())
	}
}
