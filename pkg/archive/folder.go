package archive

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
)

// Date is a calendar day as encoded in a day folder path.
//
// Day is only range checked (01-31), not checked against the month, so
// 2025/02/31 is a valid folder and orders after 2025/02/28.
type Date struct {
	Year  int
	Month int
	Day   int
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or
// after other.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return cmpInt(d.Year, other.Year)
	case d.Month != other.Month:
		return cmpInt(d.Month, other.Month)
	default:
		return cmpInt(d.Day, other.Day)
	}
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool {
	return d.Compare(other) < 0
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// DateFolder is the folder holding one day of footage.
type DateFolder struct {
	// Year, Month and Day are the raw path segments ("2025", "01", "05").
	Year  string
	Month string
	Day   string

	// Path is the folder path. It identifies the folder.
	Path string

	// Date is the parsed day.
	Date Date

	// Files are the footage files of the input list that live directly in
	// this folder, in input order.
	Files []string
}

// ParseDayFolder validates a folder path against the YYYY/MM/DD convention.
// The second return value is false if the last three segments do not match.
func ParseDayFolder(path string) (DateFolder, bool) {
	path = filepath.Clean(path)

	dayDir := path
	day := filepath.Base(dayDir)
	monthDir := filepath.Dir(dayDir)
	month := filepath.Base(monthDir)
	yearDir := filepath.Dir(monthDir)
	year := filepath.Base(yearDir)

	// Paths too short to hold three segments collapse onto "." or the root.
	if yearDir == monthDir || monthDir == dayDir {
		return DateFolder{}, false
	}

	y, ok := parseSegment(year, 4, 0, 9999)
	if !ok {
		return DateFolder{}, false
	}
	m, ok := parseSegment(month, 2, 1, 12)
	if !ok {
		return DateFolder{}, false
	}
	d, ok := parseSegment(day, 2, 1, 31)
	if !ok {
		return DateFolder{}, false
	}

	return DateFolder{
		Year:  year,
		Month: month,
		Day:   day,
		Path:  path,
		Date:  Date{Year: y, Month: m, Day: d},
	}, true
}

// parseSegment parses a fixed-width, all-digit segment within [lo, hi].
func parseSegment(s string, width, lo, hi int) (int, bool) {
	if len(s) != width {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, false
	}
	return n, true
}

// ScanFolders returns the distinct day folders containing the given files,
// newest first. Files whose parent is not a day folder are dropped.
// Folders on the same day (under different camera roots) are ordered by
// path, descending.
func ScanFolders(paths []string) []DateFolder {
	index := make(map[string]int)
	var folders []DateFolder
	rejected := make(map[string]bool)

	for _, p := range paths {
		dir := filepath.Dir(filepath.Clean(p))
		if i, ok := index[dir]; ok {
			folders[i].Files = append(folders[i].Files, p)
			continue
		}
		if rejected[dir] {
			continue
		}
		folder, ok := ParseDayFolder(dir)
		if !ok {
			rejected[dir] = true
			continue
		}
		folder.Files = []string{p}
		index[dir] = len(folders)
		folders = append(folders, folder)
	}

	SortNewestFirst(folders)
	return folders
}

// SortNewestFirst orders folders by date descending, then path descending.
func SortNewestFirst(folders []DateFolder) {
	sort.SliceStable(folders, func(i, j int) bool {
		if c := folders[i].Date.Compare(folders[j].Date); c != 0 {
			return c > 0
		}
		return folders[i].Path > folders[j].Path
	})
}

// GroupByFolder maps each parent folder to the base names of its files, in
// input order.
func GroupByFolder(paths []string) map[string][]string {
	groups := make(map[string][]string)
	for _, p := range paths {
		dir := filepath.Dir(p)
		groups[dir] = append(groups[dir], filepath.Base(p))
	}
	return groups
}
