package namelist

import (
	"errors"
	"testing"
)

func TestClassify_Scalars(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *Value
	}{
		{"logical .TRUE.", ".TRUE.", Logical(true)},
		{"logical t", "t", Logical(true)},
		{"logical True", "True", Logical(true)},
		{"logical .t.", ".t.", Logical(true)},
		{"logical F", "F", Logical(false)},
		{"logical .false.", ".false.", Logical(false)},
		{"single quoted", "'abc'", String("'abc'")},
		{"double quoted", `"x y"`, String(`"x y"`)},
		{"quoted comma", "'a,b'", String("'a,b'")},
		{"integer", "42", Integer(42)},
		{"negative integer", "-7", Integer(-7)},
		{"signed integer", "+3", Integer(3)},
		{"real", "1.5", Real(1.5)},
		{"real d exponent", "1.5d-3", Real(0.0015)},
		{"real e exponent", "2e3", Real(2000)},
		{"real leading dot", ".5", Real(0.5)},
		{"real trailing dot", "3.", Real(3)},
		{"complex", "(1.0, -2.5)", Complex(1, -2.5)},
		{"overflow", "99999999999999999999", Literal("99999999999999999999")},
		{"surrounding space", "  12  ", Integer(12)},
		{"trailing comma", "7,", Integer(7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.input)
			if err != nil {
				t.Fatalf("Classify(%q) error: %v", tt.input, err)
			}

			if !got.Equal(tt.want) {
				t.Errorf("Classify(%q) = %s %q, want %s %q",
					tt.input, got.Kind, got, tt.want.Kind, tt.want)
			}
		})
	}
}

func TestClassify_Arrays(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  Kind
		elem  Kind
		count int
	}{
		{"integers", "1, 2, 3", KindArray, KindInteger, 3},
		{"reals", "1.0,2.5", KindArray, KindReal, 2},
		{"logicals", "T, F, .true.", KindArray, KindLogical, 3},
		{"strings", "'a', 'b'", KindArray, KindString, 2},
		{"complex pairs", "(1,2), (3,4)", KindArray, KindComplex, 2},
		{"mixed kinds", "1, 'a'", KindMixed, KindLiteral, 2},
		{"unrecognized piece", "1,abc,3", KindMixed, KindLiteral, 3},
		{"trailing comma", "1, 2,", KindArray, KindInteger, 2},
		{"trailing comma with space", "'a', 'b' , ", KindArray, KindString, 2},
		{"null inside", "1,,3", KindMixed, KindLiteral, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.input)
			if err != nil {
				t.Fatalf("Classify(%q) error: %v", tt.input, err)
			}

			if got.Kind != tt.kind {
				t.Errorf("kind = %s, want %s", got.Kind, tt.kind)
			}

			if got.ElemKind() != tt.elem {
				t.Errorf("element kind = %s, want %s", got.ElemKind(), tt.elem)
			}

			if len(got.Elements) != tt.count {
				t.Errorf("len = %d, want %d", len(got.Elements), tt.count)
			}
		})
	}
}

func TestClassify_Unrecognized(t *testing.T) {
	for _, input := range []string{"abc", "1.2.3", "'unterminated", "(1,)"} {
		t.Run(input, func(t *testing.T) {
			_, err := Classify(input)
			if !errors.Is(err, ErrUnrecognizedLiteral) {
				t.Errorf("Classify(%q) error = %v, want ErrUnrecognizedLiteral",
					input, err)
			}
		})
	}
}

func TestClassify_RoundTrip(t *testing.T) {
	inputs := []string{
		".true.", "'it''s'", "-12", "1.5d-3", "2e3", "1e21", "(0.5,-1)",
		"1, 2, 3", "1,abc,3", "1, 2,", "'a', 'b'", "99999999999999999999",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			v, err := Classify(input)
			if err != nil {
				t.Fatalf("Classify(%q) error: %v", input, err)
			}

			again, err := Classify(v.String())
			if err != nil {
				t.Fatalf("Classify(%q) error: %v", v.String(), err)
			}

			if !again.Equal(v) {
				t.Errorf("round trip of %q: %q classified as %s, want %s",
					input, v.String(), again.Kind, v.Kind)
			}
		})
	}
}

func TestValue_String(t *testing.T) {
	tests := []struct {
		name  string
		value *Value
		want  string
	}{
		{"true", Logical(true), ".TRUE."},
		{"false", Logical(false), ".FALSE."},
		{"quoted", String("it's"), "'it''s'"},
		{"prequoted", String(`"ok"`), `"ok"`},
		{"integer", Integer(-5), "-5"},
		{"whole real", Real(2), "2.0"},
		{"fraction", Real(0.25), "0.25"},
		{"complex", Complex(1, -2.5), "(1.0,-2.5)"},
		{"array", Array(Integer(1), Integer(2)), "1, 2"},
		{"mixed", Array(Integer(1), String("a")), "1, 'a'"},
		{"literal", Literal("raw"), "raw"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.value.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValue_Native(t *testing.T) {
	if got := String("'it''s'").Native(); got != "it's" {
		t.Errorf("string native = %v, want it's", got)
	}

	if got := Integer(3).Native(); got != int64(3) {
		t.Errorf("integer native = %v (%T), want int64 3", got, got)
	}

	list, ok := Array(Real(1), Real(2)).Native().([]any)
	if !ok || len(list) != 2 || list[1] != 2.0 {
		t.Errorf("array native = %v, want [1 2]", list)
	}
}

func TestValue_CloneIndependent(t *testing.T) {
	v := Array(Integer(1), Integer(2))
	c := v.Clone()
	c.Elements[0].Int = 9

	if v.Elements[0].Int != 1 {
		t.Error("clone shares elements with original")
	}
}
