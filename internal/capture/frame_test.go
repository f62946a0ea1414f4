package capture

import (
	"bytes"
	"sync"
	"testing"
)

func TestFrameCell_TakeWithoutPublishFails(t *testing.T) {
	cell := NewFrameCell(12, nil)
	dst := make([]byte, 12)

	if cell.Take(dst) {
		t.Error("Take succeeded with no published frame")
	}
	if cell.Delivered() != 0 {
		t.Errorf("Delivered = %d, want 0", cell.Delivered())
	}
}

func TestFrameCell_PublishTake(t *testing.T) {
	cell := NewFrameCell(4, nil)
	cell.Publish([]byte{1, 2, 3, 4})

	if !cell.Pending() {
		t.Fatal("Pending = false after Publish")
	}

	dst := make([]byte, 4)
	if !cell.Take(dst) {
		t.Fatal("Take failed with a pending frame")
	}
	if !bytes.Equal(dst, []byte{1, 2, 3, 4}) {
		t.Errorf("Take copied %v, want [1 2 3 4]", dst)
	}
	if cell.Delivered() != 1 {
		t.Errorf("Delivered = %d, want 1", cell.Delivered())
	}
	if cell.Pending() {
		t.Error("Pending = true after successful Take")
	}
}

func TestFrameCell_PendingIsObservational(t *testing.T) {
	cell := NewFrameCell(2, nil)
	cell.Publish([]byte{9, 9})

	// Repeated observation must not consume the flag.
	for i := 0; i < 5; i++ {
		if !cell.Pending() {
			t.Fatalf("Pending flipped to false on observation %d", i)
		}
	}
}

func TestFrameCell_SmallBufferFailsWithoutSideEffects(t *testing.T) {
	cell := NewFrameCell(8, nil)
	cell.Publish(make([]byte, 8))

	if cell.Take(make([]byte, 7)) {
		t.Fatal("Take succeeded with undersized destination")
	}
	if !cell.Pending() {
		t.Error("failed Take consumed the pending frame")
	}
	if cell.Delivered() != 0 {
		t.Errorf("failed Take bumped counter to %d", cell.Delivered())
	}
}

func TestFrameCell_NewestOverwritesUndelivered(t *testing.T) {
	drops := 0
	cell := NewFrameCell(3, func() { drops++ })

	cell.Publish([]byte{1, 1, 1})
	if overwritten := cell.Publish([]byte{2, 2, 2}); !overwritten {
		t.Error("second Publish did not report an overwrite")
	}
	if drops != 1 {
		t.Errorf("onDrop called %d times, want 1", drops)
	}

	dst := make([]byte, 3)
	if !cell.Take(dst) {
		t.Fatal("Take failed")
	}
	if !bytes.Equal(dst, []byte{2, 2, 2}) {
		t.Errorf("consumer saw %v, want the newest frame [2 2 2]", dst)
	}
	if cell.Delivered() != 1 {
		t.Errorf("Delivered = %d, want 1 (dropped frames are not delivered)", cell.Delivered())
	}
}

func TestFrameCell_PublishAfterTakeDoesNotDrop(t *testing.T) {
	drops := 0
	cell := NewFrameCell(1, func() { drops++ })

	cell.Publish([]byte{1})
	cell.Take(make([]byte, 1))
	cell.Publish([]byte{2})

	if drops != 0 {
		t.Errorf("onDrop called %d times, want 0", drops)
	}
}

func TestFrameCell_ConcurrentProducerConsumer(t *testing.T) {
	cell := NewFrameCell(4, nil)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			cell.Publish([]byte{byte(i), byte(i), byte(i), byte(i)})
		}
	}()

	delivered := 0
	go func() {
		defer wg.Done()
		dst := make([]byte, 4)
		for i := 0; i < 1000; i++ {
			if cell.Take(dst) {
				delivered++
				if dst[0] != dst[3] {
					t.Errorf("torn frame observed: %v", dst)
				}
			}
		}
	}()

	wg.Wait()

	if uint32(delivered) != cell.Delivered() {
		t.Errorf("consumer saw %d deliveries, cell counted %d", delivered, cell.Delivered())
	}
}
