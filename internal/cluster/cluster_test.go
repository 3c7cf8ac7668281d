package cluster

import (
	"strings"
	"testing"

	"github.com/jedisherpa/sphereai/internal/feed"
)

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name string
		text string
		topN int
		want []string
	}{
		{
			name: "frequency ranked",
			text: "kernel kernel kernel driver driver patch",
			topN: 10,
			want: []string{"kernel", "driver", "patch"},
		},
		{
			name: "stop words dropped",
			text: "the quantum computer and the quantum future",
			topN: 10,
			want: []string{"quantum", "computer", "future"},
		},
		{
			name: "short tokens dropped",
			text: "ai ml go rust rust",
			topN: 10,
			want: []string{"rust"},
		},
		{
			name: "ties break by first appearance",
			text: "alpha beta gamma",
			topN: 10,
			want: []string{"alpha", "beta", "gamma"},
		},
		{
			name: "topN bound",
			text: "word-salad another-word third-word",
			topN: 2,
			want: []string{"word", "salad"},
		},
		{
			name: "empty",
			text: "",
			topN: 10,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractKeywords(tt.text, tt.topN)
			if len(got) != len(tt.want) {
				t.Fatalf("ExtractKeywords() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("ExtractKeywords() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func article(id, text string) feed.Article {
	return feed.Article{ID: id, Title: text}
}

func TestGroupPartition(t *testing.T) {
	articles := []feed.Article{
		article("a", "quantum computing breakthrough quantum hardware"),
		article("b", "quantum computing error correction"),
		article("c", "championship football season finale"),
		article("d", "football season injury report"),
		article("e", "unrelated singleton topic entirely"),
	}

	clusters := Group(articles, Options{})

	seen := make(map[string]int)
	for _, c := range clusters {
		for _, a := range c.Articles {
			seen[a.ID]++
		}
	}
	if len(seen) != len(articles) {
		t.Fatalf("partition covers %d articles, want %d", len(seen), len(articles))
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("article %q appears in %d clusters, want exactly 1", id, n)
		}
	}
}

func TestGroupMergesOverlapping(t *testing.T) {
	articles := []feed.Article{
		article("a", "quantum computing hardware launch"),
		article("b", "quantum computing software stack"),
		article("c", "marathon training nutrition guide"),
	}

	clusters := Group(articles, Options{})

	if len(clusters) != 2 {
		t.Fatalf("got %d clusters, want 2: %+v", len(clusters), clusters)
	}
	// Clusters sort by population descending.
	if clusters[0].Count() != 2 || clusters[1].Count() != 1 {
		t.Errorf("cluster sizes = %d, %d, want 2, 1", clusters[0].Count(), clusters[1].Count())
	}
}

// A matching article widens the cluster's keyword set, so a later article
// can join through keywords it only shares with an absorbed member.
func TestGroupAccumulatesKeywords(t *testing.T) {
	articles := []feed.Article{
		article("seed", "alpha bravo charlie delta"),
		article("bridge", "charlie delta echo foxtrot"),
		article("tail", "echo foxtrot golf hotel"),
	}

	clusters := Group(articles, Options{})

	if len(clusters) != 1 {
		t.Fatalf("got %d clusters, want 1 chained cluster: %+v", len(clusters), clusters)
	}
	if clusters[0].Count() != 3 {
		t.Errorf("cluster size = %d, want 3", clusters[0].Count())
	}
}

func TestGroupOrderDependent(t *testing.T) {
	forward := []feed.Article{
		article("seed", "alpha bravo charlie delta"),
		article("bridge", "charlie delta echo foxtrot"),
		article("tail", "echo foxtrot golf hotel"),
		article("far", "golf hotel india juliet"),
	}
	// tail is visited before bridge has widened the seed cluster's keyword
	// set, so the chain breaks in two under this permutation.
	permuted := []feed.Article{forward[0], forward[2], forward[1], forward[3]}

	a := Group(forward, Options{})
	b := Group(permuted, Options{})

	if len(a) != 1 {
		t.Fatalf("forward order should chain into 1 cluster, got %d", len(a))
	}
	if len(b) != 2 {
		t.Fatalf("permuted order should split into 2 clusters, got %d", len(b))
	}
}

func TestGroupLabel(t *testing.T) {
	articles := []feed.Article{
		article("a", "quantum quantum quantum computing computing hardware"),
	}

	clusters := Group(articles, Options{})

	if len(clusters) != 1 {
		t.Fatalf("got %d clusters", len(clusters))
	}
	want := "Quantum / Computing / Hardware"
	if clusters[0].Topic != want {
		t.Errorf("Topic = %q, want %q", clusters[0].Topic, want)
	}
}

func TestGroupLabelDefault(t *testing.T) {
	clusters := Group([]feed.Article{article("a", "a an it")}, Options{})
	if len(clusters) != 1 {
		t.Fatalf("got %d clusters", len(clusters))
	}
	if clusters[0].Topic != "General News" {
		t.Errorf("Topic = %q, want General News", clusters[0].Topic)
	}
}

func TestGroupTruncatesToMaxClusters(t *testing.T) {
	var articles []feed.Article
	topics := []string{
		"quantum computing hardware",
		"football season report",
		"interest rates economy",
		"volcano eruption geology",
		"election campaign politics",
	}
	for i, topic := range topics {
		articles = append(articles, article(string(rune('a'+i)), topic+" "+strings.Repeat(topic+" ", 2)))
	}

	clusters := Group(articles, Options{MaxClusters: 3})
	if len(clusters) != 3 {
		t.Errorf("got %d clusters, want 3 after truncation", len(clusters))
	}
}

func TestGroupEmpty(t *testing.T) {
	if got := Group(nil, Options{}); got != nil {
		t.Errorf("Group(nil) = %+v, want nil", got)
	}
}
