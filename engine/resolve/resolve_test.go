package resolve

import (
	"errors"
	"testing"

	"github.com/nathoo/parley/engine/graph"
	"github.com/nathoo/parley/types"
)

func testGraph() *graph.Graph {
	g := graph.New()
	g.Actors["old_guard"] = &types.ActorDef{ID: "old_guard", Profile: types.ActorProfile{
		Name:      "Old Guard",
		Dialogues: []string{"guard_greet", "guard_rumours", "guard_rumours_more"},
	}}
	g.Actors["young_guard"] = &types.ActorDef{ID: "young_guard", Profile: types.ActorProfile{Name: "Young Guard"}}
	g.Actors["smith"] = &types.ActorDef{ID: "smith", Profile: types.ActorProfile{
		Name:      "Hilda the Smith",
		Dialogues: []string{"smith_greet"},
	}}
	return g
}

func TestActor(t *testing.T) {
	g := testGraph()
	tests := []struct {
		name    string
		query   string
		want    string
		wantErr any
	}{
		{"exact id", "smith", "smith", nil},
		{"display name", "old guard", "old_guard", nil},
		{"word of display name", "hilda", "smith", nil},
		{"case insensitive", "YOUNG", "young_guard", nil},
		{"underscore id", "young guard", "young_guard", nil},
		{"ambiguous", "guard", "", &AmbiguityError{}},
		{"not found", "dragon", "", &NotFoundError{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Actor(g, tt.query)
			switch tt.wantErr.(type) {
			case *AmbiguityError:
				var amb *AmbiguityError
				if !errors.As(err, &amb) {
					t.Fatalf("expected AmbiguityError, got %v", err)
				}
				if len(amb.Candidates) != 2 || amb.Candidates[0] != "old_guard" {
					t.Errorf("candidates = %v", amb.Candidates)
				}
			case *NotFoundError:
				var nf *NotFoundError
				if !errors.As(err, &nf) {
					t.Fatalf("expected NotFoundError, got %v", err)
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got != tt.want {
					t.Errorf("Actor(%q) = %q, want %q", tt.query, got, tt.want)
				}
			}
		})
	}
}

func TestDialogue(t *testing.T) {
	g := testGraph()

	if id, err := Dialogue(g, "old_guard", "greet"); err != nil || id != "guard_greet" {
		t.Errorf("greet = %q, %v", id, err)
	}
	if id, err := Dialogue(g, "old_guard", "guard_rumours"); err != nil || id != "guard_rumours" {
		t.Errorf("exact id should win over partial matches, got %q, %v", id, err)
	}

	var amb *AmbiguityError
	if _, err := Dialogue(g, "old_guard", "rumours"); !errors.As(err, &amb) {
		t.Errorf("expected ambiguity, got %v", err)
	}

	var nf *NotFoundError
	if _, err := Dialogue(g, "smith", "rumours"); !errors.As(err, &nf) || nf.Kind != "topic" {
		t.Errorf("other actor's topics must not resolve, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	g := testGraph()

	res, err := Resolve(g, types.Intent{Verb: "talk", Object: "hilda", Target: "greet"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ActorID != "smith" || res.DialogueID != "smith_greet" {
		t.Errorf("got %+v", res)
	}

	res, err = Resolve(g, types.Intent{Verb: "look"})
	if err != nil || res != (Result{}) {
		t.Errorf("empty intent should resolve nothing, got %+v, %v", res, err)
	}
}

func TestErrorMessages(t *testing.T) {
	amb := &AmbiguityError{Name: "guard", Candidates: []string{"old_guard", "young_guard"}}
	if amb.Error() != "which guard? (old_guard, young_guard)" {
		t.Errorf("got %q", amb.Error())
	}
	if (&NotFoundError{Name: "dragon"}).Error() != `you don't see "dragon" here` {
		t.Error("unexpected actor not-found message")
	}
	if (&NotFoundError{Name: "x", Kind: "topic"}).Error() != `nobody here talks about "x"` {
		t.Error("unexpected topic not-found message")
	}
}
