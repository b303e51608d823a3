package xtender

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

// rangeRe matches expansion markers like !!A:1..5!! inside check names and commands.
var rangeRe = regexp.MustCompile(`!!(A|B):(\d+)\.\.(\d+)!!`)

// checkRange is one expansion marker, both bounds inclusive.
type checkRange struct {
	name  string
	start int
	end   int
}

func (r *checkRange) placeholder() string {
	return fmt.Sprintf("!!%s:%d..%d!!", r.name, r.start, r.end)
}

func extractRanges(s string) []checkRange {
	matches := rangeRe.FindAllStringSubmatch(s, -1)
	ranges := make([]checkRange, 0, len(matches))
	for _, match := range matches {
		start, _ := strconv.Atoi(match[2])
		end, _ := strconv.Atoi(match[3])
		ranges = append(ranges, checkRange{name: match[1], start: start, end: end})
	}

	return ranges
}

// sortedUniqueRanges sorts by name, start, end and removes duplicates so the
// markers of a name and a command can be compared regardless of order.
func sortedUniqueRanges(ranges []checkRange) []checkRange {
	sorted := make([]checkRange, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].name != sorted[j].name {
			return sorted[i].name < sorted[j].name
		}
		if sorted[i].start != sorted[j].start {
			return sorted[i].start < sorted[j].start
		}

		return sorted[i].end < sorted[j].end
	})

	unique := sorted[:0]
	for i, r := range sorted {
		if i == 0 || r != sorted[i-1] {
			unique = append(unique, r)
		}
	}

	return unique
}
