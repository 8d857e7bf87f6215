package markup

import (
	"math"
	"regexp"
	"testing"

	"github.com/goliatone/go-bower/pkg/sexp"
)

func TestRender(t *testing.T) {
	cases := []struct {
		name string
		in   sexp.Value
		want string
	}{
		{
			name: "element with attributes",
			in: sexp.List{
				sexp.Symbol("a"),
				sexp.List{sexp.List{sexp.Symbol("href"), sexp.String("/x")}},
				sexp.String("click"),
			},
			want: `<a href="/x">click</a>`,
		},
		{
			name: "nested elements",
			in: sexp.List{
				sexp.Symbol("ul"),
				sexp.List{sexp.Symbol("li"), sexp.String("one")},
				sexp.List{sexp.Symbol("li"), sexp.String("two")},
			},
			want: `<ul><li>one</li><li>two</li></ul>`,
		},
		{
			name: "vector is a fragment",
			in:   sexp.Vector{sexp.String("a"), sexp.String("b")},
			want: "ab",
		},
		{
			name: "empty list",
			in:   sexp.List{},
			want: "",
		},
		{
			name: "empty second list is an attribute list",
			in:   sexp.List{sexp.Symbol("div"), sexp.List{}},
			want: "<div></div>",
		},
		{
			name: "list without symbol head is a fragment",
			in: sexp.List{
				sexp.String("x"),
				sexp.List{sexp.Symbol("b"), sexp.String("y")},
				sexp.Int(3),
			},
			want: "x<b>y</b>3",
		},
		{
			name: "element without children",
			in:   sexp.List{sexp.Symbol("br")},
			want: "<br></br>",
		},
		{
			name: "multiple attributes keep order",
			in: sexp.List{
				sexp.Symbol("img"),
				sexp.List{
					sexp.List{sexp.Symbol("src"), sexp.String("/a.png")},
					sexp.List{sexp.String("width"), sexp.Int(640)},
					sexp.List{sexp.Symbol("class"), sexp.Symbol("hero")},
				},
			},
			want: `<img src="/a.png" width="640" class="hero"></img>`,
		},
		{
			name: "unsupported attribute pairs are omitted",
			in: sexp.List{
				sexp.Symbol("p"),
				sexp.List{
					sexp.List{sexp.Int(1), sexp.String("bad key")},
					sexp.List{sexp.Symbol("data-x"), sexp.Float(1.5)},
					sexp.List{sexp.Symbol("id"), sexp.String("ok")},
				},
				sexp.String("body"),
			},
			want: `<p id="ok">body</p>`,
		},
		{
			name: "attribute list where every pair is dropped",
			in: sexp.List{
				sexp.Symbol("p"),
				sexp.List{sexp.List{sexp.Null{}, sexp.Null{}}},
				sexp.String("t"),
			},
			want: `<p>t</p>`,
		},
		{
			name: "second element that is not all pairs is a child",
			in: sexp.List{
				sexp.Symbol("div"),
				sexp.List{sexp.Symbol("span"), sexp.String("a"), sexp.String("b")},
			},
			want: `<div><span>ab</span></div>`,
		},
		{
			name: "two element child in second position reads as attributes",
			in: sexp.List{
				sexp.Symbol("ul"),
				sexp.List{sexp.List{sexp.Symbol("li"), sexp.String("only")}},
			},
			want: `<ul li="only"></ul>`,
		},
		{
			name: "explicit empty attributes protect a fragment child",
			in: sexp.List{
				sexp.Symbol("ul"),
				sexp.List{},
				sexp.List{sexp.List{sexp.Symbol("li"), sexp.String("only")}},
			},
			want: `<ul><li>only</li></ul>`,
		},
		{
			name: "text is not escaped",
			in:   sexp.List{sexp.Symbol("p"), sexp.List{}, sexp.String(`<b>"raw" & ready</b>`)},
			want: `<p><b>"raw" & ready</b></p>`,
		},
		{
			name: "scalars",
			in: sexp.Vector{
				sexp.Int(-42), sexp.String(" "),
				sexp.Float(3.25), sexp.String(" "),
				sexp.Float(2), sexp.String(" "),
				sexp.Bool(true), sexp.String(" "),
				sexp.Bool(false), sexp.String(" "),
				sexp.Symbol("sym"),
			},
			want: "-42 3.25 2 true false sym",
		},
		{
			name: "non-finite floats",
			in: sexp.Vector{
				sexp.Float(math.Inf(1)), sexp.String(" "),
				sexp.Float(math.Inf(-1)), sexp.String(" "),
				sexp.Float(math.NaN()),
			},
			want: "inf -inf NaN",
		},
		{
			name: "null and maps are dropped",
			in: sexp.List{
				sexp.Symbol("div"),
				sexp.List{},
				sexp.Null{},
				sexp.NewMap(sexp.Entry{Key: sexp.Symbol("k"), Value: sexp.String("v")}),
				sexp.String("kept"),
			},
			want: "<div>kept</div>",
		},
		{
			name: "nil renders empty",
			in:   nil,
			want: "",
		},
		{
			name: "vector inside element",
			in: sexp.List{
				sexp.Symbol("p"),
				sexp.Vector{sexp.String("a"), sexp.List{sexp.Symbol("i"), sexp.String("b")}},
			},
			want: "<p>a<i>b</i></p>",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Render(tc.in); got != tc.want {
				t.Fatalf("Render mismatch\nwant: %s\ngot:  %s", tc.want, got)
			}
		})
	}
}

func TestRenderIsPure(t *testing.T) {
	tree := sexp.List{
		sexp.Symbol("html"),
		sexp.List{sexp.List{sexp.Symbol("lang"), sexp.String("en")}},
		sexp.List{sexp.Symbol("head"), sexp.List{sexp.Symbol("title"), sexp.String("t")}},
		sexp.List{sexp.Symbol("body"), sexp.Vector{sexp.String("a"), sexp.Int(1)}},
	}
	first := Render(tree)
	second := Render(tree)
	if first != second {
		t.Fatalf("render not stable:\n%s\n%s", first, second)
	}
	if tree[0] != sexp.Symbol("html") || len(tree) != 4 {
		t.Fatal("render mutated its input")
	}
}

func TestRenderTagNamesMatch(t *testing.T) {
	trees := []sexp.List{
		{sexp.Symbol("section")},
		{sexp.Symbol("section"), sexp.String("x")},
		{sexp.Symbol("section"), sexp.Int(1), sexp.List{sexp.Symbol("p"), sexp.String("y")}},
		{sexp.Symbol("section"), sexp.Vector{sexp.String("v")}},
	}
	pattern := regexp.MustCompile(`^<section>.*</section>$`)
	for _, tree := range trees {
		if got := Render(tree); !pattern.MatchString(got) {
			t.Fatalf("expected %q to match %s", got, pattern)
		}
	}
}
