package core

import (
	"errors"
	"testing"

	"github.com/signalsfoundry/spectrum-sim/model"
)

type recordingObserver struct {
	added     []model.ComponentKind
	destroyed []model.EntityID
}

func (o *recordingObserver) ComponentAdded(_ model.EntityID, kind model.ComponentKind) {
	o.added = append(o.added, kind)
}

func (o *recordingObserver) EntityDestroyed(id model.EntityID) {
	o.destroyed = append(o.destroyed, id)
}

func TestWorldCreateDuplicateEntity(t *testing.T) {
	world := NewWorld()
	if err := world.CreateEntity("e"); err != nil {
		t.Fatalf("CreateEntity: %v", err)
	}
	err := world.CreateEntity("e")
	if !errors.Is(err, ErrEntityExists) {
		t.Fatalf("duplicate CreateEntity error = %v, want ErrEntityExists", err)
	}
}

func TestWorldAttachToMissingEntity(t *testing.T) {
	world := NewWorld()
	err := world.SetTransform("ghost", &model.Transform{Scale: 1})
	if !errors.Is(err, ErrEntityNotFound) {
		t.Fatalf("SetTransform on missing entity error = %v, want ErrEntityNotFound", err)
	}
}

func TestWorldEntitiesWithPreservesCreationOrder(t *testing.T) {
	world := NewWorld()
	for _, id := range []model.EntityID{"c", "a", "b"} {
		if err := world.CreateEntity(id); err != nil {
			t.Fatalf("CreateEntity(%s): %v", id, err)
		}
		world.SetTransform(id, &model.Transform{Scale: 1})
	}
	world.SetReceiver("c", &model.Receiver{Frequency: model.FreqUHF})
	world.SetReceiver("b", &model.Receiver{Frequency: model.FreqUHF})

	got := world.EntitiesWith(model.KindReceiver, model.KindTransform)
	if len(got) != 2 || got[0] != "c" || got[1] != "b" {
		t.Fatalf("EntitiesWith = %v, want [c b] in creation order", got)
	}
}

func TestWorldDestroyEntityRemovesComponents(t *testing.T) {
	world := NewWorld()
	if err := world.CreateEntity("e"); err != nil {
		t.Fatalf("CreateEntity: %v", err)
	}
	world.SetTransform("e", &model.Transform{Scale: 1})
	world.SetReceiver("e", &model.Receiver{Frequency: model.FreqUHF})

	if err := world.DestroyEntity("e"); err != nil {
		t.Fatalf("DestroyEntity: %v", err)
	}
	if world.HasEntity("e") {
		t.Fatalf("entity survives destruction")
	}
	if world.Receiver("e") != nil || world.Transform("e") != nil {
		t.Fatalf("components survive destruction")
	}
	if got := world.EntitiesWith(model.KindTransform); len(got) != 0 {
		t.Fatalf("destroyed entity still listed: %v", got)
	}
}

func TestWorldDestroyMissingEntity(t *testing.T) {
	world := NewWorld()
	if err := world.DestroyEntity("ghost"); !errors.Is(err, ErrEntityNotFound) {
		t.Fatalf("DestroyEntity on missing entity error = %v, want ErrEntityNotFound", err)
	}
}

func TestWorldObserverNotifications(t *testing.T) {
	world := NewWorld()
	obs := &recordingObserver{}
	world.Subscribe(obs)

	if err := world.CreateEntity("e"); err != nil {
		t.Fatalf("CreateEntity: %v", err)
	}
	world.SetTransform("e", &model.Transform{Scale: 1})
	world.SetJammer("e", &model.Jammer{Type: model.JammerSpot})
	if err := world.DestroyEntity("e"); err != nil {
		t.Fatalf("DestroyEntity: %v", err)
	}

	if len(obs.added) != 2 || obs.added[0] != model.KindTransform || obs.added[1] != model.KindJammer {
		t.Fatalf("added notifications = %v", obs.added)
	}
	if len(obs.destroyed) != 1 || obs.destroyed[0] != "e" {
		t.Fatalf("destroyed notifications = %v", obs.destroyed)
	}
}

func TestWorldPositionOfTransformlessEntity(t *testing.T) {
	world := NewWorld()
	if err := world.CreateEntity("e"); err != nil {
		t.Fatalf("CreateEntity: %v", err)
	}
	if pos := world.Position("e"); pos != (Vec3{}) {
		t.Fatalf("position without transform = %+v, want origin", pos)
	}
}

func TestWorldClear(t *testing.T) {
	world := NewWorld()
	if err := world.CreateEntity("e"); err != nil {
		t.Fatalf("CreateEntity: %v", err)
	}
	world.SetTransform("e", &model.Transform{Scale: 1})
	world.Clear()

	if world.HasEntity("e") {
		t.Fatalf("entity survived Clear")
	}
	if got := world.EntitiesWith(model.KindTransform); len(got) != 0 {
		t.Fatalf("EntitiesWith after Clear = %v", got)
	}
}
