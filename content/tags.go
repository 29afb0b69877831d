package content

import "sort"

// TagCount is a tag with the number of articles carrying it.
type TagCount struct {
	Name  string
	Slug  string
	Count int
}

// CountTags tallies tags across articles, grouping spellings that share a
// slug under the first spelling seen. The result is ordered by count
// descending, then slug.
func CountTags(articles []Article) []TagCount {
	return countLabels(articles, func(a Article) []string { return a.Tags })
}

// CountCategories tallies categories the same way CountTags tallies tags.
func CountCategories(articles []Article) []TagCount {
	return countLabels(articles, func(a Article) []string { return a.Categories })
}

func countLabels(articles []Article, labels func(Article) []string) []TagCount {
	index := make(map[string]int)
	var out []TagCount
	for _, a := range articles {
		vals := labels(a)
		seen := make(map[string]struct{}, len(vals))
		for _, t := range vals {
			slug := TagSlug(t)
			if slug == "" {
				continue
			}
			if _, dup := seen[slug]; dup {
				continue
			}
			seen[slug] = struct{}{}
			if i, ok := index[slug]; ok {
				out[i].Count++
				continue
			}
			index[slug] = len(out)
			out = append(out, TagCount{Name: t, Slug: slug, Count: 1})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Slug < out[j].Slug
	})
	return out
}
