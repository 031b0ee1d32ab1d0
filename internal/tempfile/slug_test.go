package tempfile

import (
	"regexp"
	"strings"
	"sync"
	"testing"
)

var slugPattern = regexp.MustCompile(`^c[0-9]+_[A-Za-z0-9_.]{1,100}$`)

func TestEncodeTransliterates(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Les Misérables", "Les_Miserables"},
		{"Αλφα Βήτα", "alfa_behta"},
		{"Ψάμμος", "psammos"},
		{"Ça   va - bien?", "Ca_va_bien_"},
		{"Tome 1.2", "Tome_1.2"},
		{"Ñandú", "Nandu"},
		{"日本", "_"},
	}
	for _, tc := range cases {
		cache := NewSlugCache()
		got := cache.Encode(tc.title)
		if want := "c1_" + tc.want; got != want {
			t.Errorf("Encode(%q) = %q, want %q", tc.title, got, want)
		}
		if !slugPattern.MatchString(got) {
			t.Errorf("Encode(%q) = %q does not match slug pattern", tc.title, got)
		}
	}
}

func TestEncodeMemoizesPerTitle(t *testing.T) {
	cache := NewSlugCache()
	first := cache.Encode("Candide")
	second := cache.Encode("Zadig")
	again := cache.Encode("Candide")

	if first != "c1_Candide" || second != "c2_Zadig" {
		t.Fatalf("unexpected slugs %q %q", first, second)
	}
	if again != first {
		t.Fatalf("expected memoized slug %q, got %q", first, again)
	}
	if cache.Len() != 2 {
		t.Fatalf("expected 2 cached titles, got %d", cache.Len())
	}
}

func TestEncodeKeepsTailOfLongTitles(t *testing.T) {
	cache := NewSlugCache()
	title := strings.Repeat("a", 150) + "_volume.9"
	got := cache.Encode(title)

	body := strings.TrimPrefix(got, "c1_")
	if len(body) != MaxSlugLength {
		t.Fatalf("expected body of %d bytes, got %d (%q)", MaxSlugLength, len(body), got)
	}
	if !strings.HasSuffix(body, "_volume.9") {
		t.Fatalf("expected tail to survive, got %q", body)
	}
	if !slugPattern.MatchString(got) {
		t.Fatalf("slug %q does not match pattern", got)
	}
}

func TestEncodeConcurrentCallersShareCounter(t *testing.T) {
	cache := NewSlugCache()
	titles := []string{"A", "B", "C", "D", "E", "F", "G", "H"}

	var wg sync.WaitGroup
	results := make([]string, len(titles)*4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = cache.Encode(titles[i%len(titles)])
		}(i)
	}
	wg.Wait()

	seen := map[string]string{}
	prefixes := map[string]bool{}
	for i, slug := range results {
		title := titles[i%len(titles)]
		if prev, ok := seen[title]; ok && prev != slug {
			t.Fatalf("title %q encoded twice differently: %q vs %q", title, prev, slug)
		}
		seen[title] = slug
		prefixes[strings.SplitN(slug, "_", 2)[0]] = true
	}
	if len(prefixes) != len(titles) {
		t.Fatalf("expected %d distinct counters, got %d", len(titles), len(prefixes))
	}
}
