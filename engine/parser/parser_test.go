package parser

import (
	"testing"

	"github.com/nathoo/parley/types"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  types.Intent
	}{
		// Empty / whitespace
		{
			name:  "empty string",
			input: "",
			want:  types.Intent{},
		},
		{
			name:  "whitespace only",
			input: "   ",
			want:  types.Intent{},
		},

		// Basic verbs (no object)
		{
			name:  "look",
			input: "look",
			want:  types.Intent{Verb: "look"},
		},
		{
			name:  "end",
			input: "end",
			want:  types.Intent{Verb: "end"},
		},

		// Verb aliases
		{
			name:  "l → look",
			input: "l",
			want:  types.Intent{Verb: "look"},
		},
		{
			name:  "c → continue",
			input: "c",
			want:  types.Intent{Verb: "continue"},
		},
		{
			name:  "next → continue",
			input: "next",
			want:  types.Intent{Verb: "continue"},
		},
		{
			name:  "bye → end",
			input: "bye",
			want:  types.Intent{Verb: "end"},
		},
		{
			name:  "z → wait",
			input: "z",
			want:  types.Intent{Verb: "wait"},
		},

		// Choices
		{
			name:  "choose 2",
			input: "choose 2",
			want:  types.Intent{Verb: "choose", Object: "2"},
		},
		{
			name:  "pick 1 → choose 1",
			input: "pick 1",
			want:  types.Intent{Verb: "choose", Object: "1"},
		},
		{
			name:  "bare number → choose",
			input: "3",
			want:  types.Intent{Verb: "choose", Object: "3"},
		},

		// Talk
		{
			name:  "talk to guard",
			input: "talk to guard",
			want:  types.Intent{Verb: "talk", Object: "guard"},
		},
		{
			name:  "talk to the guard about rumours",
			input: "talk to the guard about rumours",
			want:  types.Intent{Verb: "talk", Object: "guard", Target: "rumours"},
		},
		{
			name:  "ask guard about wolves → talk",
			input: "ask guard about wolves",
			want:  types.Intent{Verb: "talk", Object: "guard", Target: "wolves"},
		},
		{
			name:  "speak with old guard → talk old guard",
			input: "speak with old guard",
			want:  types.Intent{Verb: "talk", Object: "old guard"},
		},
		{
			name:  "talk guard (no preposition)",
			input: "talk guard",
			want:  types.Intent{Verb: "talk", Object: "guard"},
		},

		// Proximity
		{
			name:  "approach guard",
			input: "approach guard",
			want:  types.Intent{Verb: "approach", Object: "guard"},
		},
		{
			name:  "walk to the guard → approach guard",
			input: "walk to the guard",
			want:  types.Intent{Verb: "approach", Object: "guard"},
		},
		{
			name:  "leave guard",
			input: "leave guard",
			want:  types.Intent{Verb: "leave", Object: "guard"},
		},
		{
			name:  "walk away from guard → leave guard",
			input: "walk away from guard",
			want:  types.Intent{Verb: "leave", Object: "guard"},
		},

		// Wait
		{
			name:  "wait 2.5",
			input: "wait 2.5",
			want:  types.Intent{Verb: "wait", Object: "2.5"},
		},

		// Case insensitivity
		{
			name:  "TALK TO GUARD",
			input: "TALK TO GUARD",
			want:  types.Intent{Verb: "talk", Object: "guard"},
		},
		{
			name:  "Say Goodbye",
			input: "Say Goodbye",
			want:  types.Intent{Verb: "end"},
		},

		// Unknown verb passes through
		{
			name:  "unknown verb",
			input: "dance",
			want:  types.Intent{Verb: "dance"},
		},
		{
			name:  "unknown verb with object",
			input: "push boulder",
			want:  types.Intent{Verb: "push", Object: "boulder"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}
