package rank

import (
	"math/rand"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/kailas-cloud/tagdex/internal/domain/record"
)

func rec(id int64, description string, tags ...string) record.Record {
	if tags == nil {
		tags = []string{}
	}
	return record.Reconstruct(id, description, tags, "/uploads/doc")
}

func ids(recs []record.Record) []int64 {
	out := make([]int64, len(recs))
	for i := range recs {
		out[i] = recs[i].ID()
	}
	return out
}

// --- Tokenizer ---

func TestSimpleTokenizer(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"whitespace only", " \t\n ", []string{}},
		{"lowercases", "Network SPEC", []string{"network", "spec"}},
		{"punctuation runs", "network, spec!", []string{"network", "spec"}},
		{"symbols", "c++ & go $100", []string{"c", "go", "100"}},
		{"connector punctuation", "foo_bar e-mail", []string{"foo", "bar", "e", "mail"}},
		{"punctuation only", "!!! ??? ...", []string{}},
		{"unsegmented script", "日本語の文書", []string{"日本語の文書"}},
		{"ideographic comma", "予算、計画。", []string{"予算", "計画"}},
		{"full-width space", "予算　計画", []string{"予算", "計画"}},
	}

	tok := SimpleTokenizer{}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tok.Tokenize(tc.in)
			if len(got) == 0 && len(tc.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Tokenize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestTokenizerFunc(t *testing.T) {
	var tok Tokenizer = TokenizerFunc(func(s string) []string { return strings.Split(s, "|") })
	got := tok.Tokenize("a|b")
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("got %q", got)
	}
}

// --- Score ---

func TestScore_ExactTagBonus(t *testing.T) {
	r := rec(1, "a report", "budget")
	if got := Score("budget", &r); got != 1.5 {
		t.Errorf("Score = %v, want 1.5", got)
	}
}

func TestScore_DescriptionOnly(t *testing.T) {
	r := rec(1, "quarterly budget plan", "finance")
	if got := Score("budget", &r); got != 1 {
		t.Errorf("Score = %v, want 1", got)
	}
}

func TestScore_EmptyQuery(t *testing.T) {
	r := rec(1, "anything at all", "tag")
	for _, q := range []string{"", "   ", "?!,.", "★☆"} {
		if got := Score(q, &r); got != 0 {
			t.Errorf("Score(%q) = %v, want 0", q, got)
		}
	}
}

func TestScore_EmptyRecord(t *testing.T) {
	r := rec(1, "")
	if got := Score("anything", &r); got != 0 {
		t.Errorf("Score = %v, want 0", got)
	}

	nilTags := record.Reconstruct(2, "", nil, "")
	if got := Score("anything", &nilTags); got != 0 {
		t.Errorf("Score with nil tags = %v, want 0", got)
	}

	if got := Score("anything", nil); got != 0 {
		t.Errorf("Score(nil record) = %v, want 0", got)
	}
}

func TestScore_RepeatedQueryTokensCountTwice(t *testing.T) {
	r := rec(1, "budget", "budget")
	// Each "budget" scores 1 (bag hit) + 0.5 (tag hit).
	if got := Score("budget budget", &r); got != 3 {
		t.Errorf("Score = %v, want 3", got)
	}
}

func TestScore_DuplicateHaystackTokensCollapse(t *testing.T) {
	r := rec(1, "budget budget budget")
	if got := Score("budget", &r); got != 1 {
		t.Errorf("Score = %v, want 1", got)
	}
}

func TestScore_TagMatchIsCaseInsensitive(t *testing.T) {
	r := rec(1, "notes", "Budget")
	if got := Score("BUDGET", &r); got != 1.5 {
		t.Errorf("Score = %v, want 1.5", got)
	}
}

func TestScore_MultiWordTagIsNotExact(t *testing.T) {
	r := rec(1, "notes", "budget plan")
	// Both tokens hit the haystack, neither equals the whole tag.
	if got := Score("budget plan", &r); got != 2 {
		t.Errorf("Score = %v, want 2", got)
	}
}

func TestScore_PunctuationRobust(t *testing.T) {
	r := rec(1, "network design spec", "network", "spec")
	a := Score("network spec", &r)
	b := Score("network, spec!", &r)
	if a != b {
		t.Errorf("punctuated query scored %v, plain scored %v", b, a)
	}
}

func TestScore_Idempotent(t *testing.T) {
	r := rec(1, "hiring policy draft", "hr", "policy")
	first := Score("policy hr", &r)
	for i := 0; i < 5; i++ {
		if got := Score("policy hr", &r); got != first {
			t.Fatalf("call %d: Score = %v, first = %v", i, got, first)
		}
	}
}

func TestScore_CustomTokenizer(t *testing.T) {
	// Character bigram tokenizer for unsegmented text.
	bigrams := TokenizerFunc(func(s string) []string {
		rs := []rune(s)
		var out []string
		for i := 0; i+1 < len(rs); i++ {
			out = append(out, string(rs[i:i+2]))
		}
		return out
	})
	r := rec(1, "予算計画書")

	if got := Score("予算", &r); got != 0 {
		t.Fatalf("default tokenizer should not split unsegmented text, got %v", got)
	}
	if got := New(bigrams).Score("予算", &r); got != 1 {
		t.Errorf("bigram Score = %v, want 1", got)
	}
}

// --- TopK / Rank ---

func TestTopK_EndToEnd(t *testing.T) {
	records := []record.Record{
		rec(1, "network design spec", "network", "spec"),
		rec(2, "hiring policy", "hr"),
	}

	hits := New(nil).Rank("network spec", records, 10)
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if hits[0].Record.ID() != 1 {
		t.Errorf("hit ID = %d, want 1", hits[0].Record.ID())
	}
	if hits[0].Score != 3 {
		t.Errorf("hit score = %v, want 3", hits[0].Score)
	}

	top := TopK("network spec", records, 10)
	if !reflect.DeepEqual(ids(top), []int64{1}) {
		t.Errorf("TopK ids = %v, want [1]", ids(top))
	}
}

func TestTopK_SortedDescending(t *testing.T) {
	records := []record.Record{
		rec(1, "budget"),
		rec(2, "budget plan", "budget"),
		rec(3, "budget plan 2024", "budget", "plan"),
		rec(4, "unrelated"),
	}

	hits := New(nil).Rank("budget plan", records, 10)
	got := make([]int64, len(hits))
	for i, h := range hits {
		got[i] = h.Record.ID()
		if i > 0 && h.Score > hits[i-1].Score {
			t.Errorf("not sorted at %d: %v > %v", i, h.Score, hits[i-1].Score)
		}
	}
	if !reflect.DeepEqual(got, []int64{3, 2, 1}) {
		t.Errorf("order = %v, want [3 2 1]", got)
	}
}

func TestTopK_TiesKeepInputOrder(t *testing.T) {
	records := []record.Record{
		rec(5, "alpha report"),
		rec(2, "beta report"),
		rec(9, "gamma report"),
		rec(1, "delta report"),
	}

	got := ids(TopK("report", records, 10))
	if !reflect.DeepEqual(got, []int64{5, 2, 9, 1}) {
		t.Errorf("tie order = %v, want input order [5 2 9 1]", got)
	}
}

func TestTopK_TruncatesToK(t *testing.T) {
	records := make([]record.Record, 25)
	for i := range records {
		records[i] = rec(int64(i+1), "shared word")
	}

	if got := len(TopK("shared", records, 10)); got != 10 {
		t.Errorf("len = %d, want 10", got)
	}
	if got := len(TopK("shared", records, 3)); got != 3 {
		t.Errorf("len = %d, want 3", got)
	}
	if got := len(TopK("shared", records, 100)); got != 25 {
		t.Errorf("len = %d, want 25", got)
	}
}

func TestTopK_EmptyResults(t *testing.T) {
	records := []record.Record{rec(1, "network design spec", "network")}

	tests := []struct {
		name    string
		query   string
		records []record.Record
		k       int
	}{
		{"nil records", "network", nil, 10},
		{"empty records", "network", []record.Record{}, 10},
		{"no match", "payroll", records, 10},
		{"empty query", "", records, 10},
		{"zero k", "network", records, 0},
		{"negative k", "network", records, -1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := TopK(tc.query, tc.records, tc.k)
			if got == nil {
				t.Fatal("expected empty slice, got nil")
			}
			if len(got) != 0 {
				t.Errorf("expected no hits, got %v", ids(got))
			}
		})
	}
}

func TestTopK_DoesNotMutateInput(t *testing.T) {
	records := []record.Record{
		rec(1, "low budget"),
		rec(2, "budget budget plan", "budget"),
	}
	before := ids(records)

	_ = TopK("budget plan", records, 10)

	if !reflect.DeepEqual(ids(records), before) {
		t.Errorf("input reordered: %v, was %v", ids(records), before)
	}
	if records[1].Tags()[0] != "budget" {
		t.Error("input tags mutated")
	}
}

func TestTopK_Properties(t *testing.T) {
	words := []string{"network", "spec", "budget", "plan", "hr", "policy", "design", "report"}
	rng := rand.New(rand.NewSource(42))

	records := make([]record.Record, 60)
	for i := range records {
		desc := make([]string, 1+rng.Intn(4))
		for j := range desc {
			desc[j] = words[rng.Intn(len(words))]
		}
		tags := make([]string, rng.Intn(3))
		for j := range tags {
			tags[j] = words[rng.Intn(len(words))]
		}
		records[i] = rec(int64(i+1), strings.Join(desc, " "), tags...)
	}

	r := New(nil)
	queries := []string{"network spec", "budget", "hr policy report", "design, plan!", "nothing"}

	for _, q := range queries {
		for _, k := range []int{1, 5, 10, 100} {
			hits := r.Rank(q, records, k)
			if len(hits) > k {
				t.Fatalf("q=%q k=%d: %d hits", q, k, len(hits))
			}
			for _, h := range hits {
				if h.Score <= 0 {
					t.Fatalf("q=%q: non-positive hit %d (%v)", q, h.Record.ID(), h.Score)
				}
				if got := r.Score(q, &h.Record); got != h.Score {
					t.Fatalf("q=%q: hit score %v, Score() %v", q, h.Score, got)
				}
			}

			// Membership is order-invariant outside of ties at the cut-off.
			shuffled := make([]record.Record, len(records))
			copy(shuffled, records)
			rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

			if !sameMembershipAboveCut(hits, r.Rank(q, shuffled, k)) {
				t.Fatalf("q=%q k=%d: membership changed after shuffle", q, k)
			}
		}
	}
}

// sameMembershipAboveCut compares hit sets, ignoring records tied with the lowest kept score.
func sameMembershipAboveCut(a, b []Hit) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	cut := a[len(a)-1].Score
	above := func(hs []Hit) []int64 {
		var out []int64
		for _, h := range hs {
			if h.Score > cut {
				out = append(out, h.Record.ID())
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
		return out
	}
	return reflect.DeepEqual(above(a), above(b))
}

func TestNew_NilTokenizerDefaults(t *testing.T) {
	r := New(nil)
	if _, ok := r.tok.(SimpleTokenizer); !ok {
		t.Errorf("expected SimpleTokenizer, got %T", r.tok)
	}
}
