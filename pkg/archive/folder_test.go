package archive

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseDayFolder(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		wantOK bool
		want   Date
	}{
		{"valid", "/srv/cam/2025/01/05", true, Date{2025, 1, 5}},
		{"relative", "2024/12/31", true, Date{2024, 12, 31}},
		{"trailing slash", "/srv/cam/2025/01/05/", true, Date{2025, 1, 5}},
		{"day 31 in february", "/srv/2025/02/31", true, Date{2025, 2, 31}},
		{"month 13", "/srv/2025/13/01", false, Date{}},
		{"month 00", "/srv/2025/00/01", false, Date{}},
		{"day 00", "/srv/2025/01/00", false, Date{}},
		{"day 32", "/srv/2025/01/32", false, Date{}},
		{"single digit month", "/srv/2025/1/05", false, Date{}},
		{"three digit day", "/srv/2025/01/005", false, Date{}},
		{"short year", "/srv/25/01/05", false, Date{}},
		{"non numeric", "/srv/2025/ab/05", false, Date{}},
		{"tombstone", "/srv/2025/01/05.evicting", false, Date{}},
		{"too short", "01/05", false, Date{}},
		{"single segment", "05", false, Date{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			folder, ok := ParseDayFolder(filepath.FromSlash(tt.path))
			if ok != tt.wantOK {
				t.Fatalf("ParseDayFolder(%q) ok = %v, want %v", tt.path, ok, tt.wantOK)
			}
			if ok && folder.Date != tt.want {
				t.Errorf("date = %v, want %v", folder.Date, tt.want)
			}
		})
	}
}

func TestParseDayFolder_Segments(t *testing.T) {
	folder, ok := ParseDayFolder(filepath.FromSlash("/srv/cam/2025/03/09"))
	if !ok {
		t.Fatal("expected valid folder")
	}
	if folder.Year != "2025" || folder.Month != "03" || folder.Day != "09" {
		t.Errorf("unexpected segments: %q %q %q", folder.Year, folder.Month, folder.Day)
	}
	if folder.Path != filepath.FromSlash("/srv/cam/2025/03/09") {
		t.Errorf("unexpected path %q", folder.Path)
	}
}

func TestDate_Compare(t *testing.T) {
	tests := []struct {
		a, b Date
		want int
	}{
		{Date{2025, 1, 5}, Date{2025, 1, 5}, 0},
		{Date{2025, 1, 4}, Date{2025, 1, 5}, -1},
		{Date{2025, 2, 1}, Date{2025, 1, 31}, 1},
		{Date{2024, 12, 31}, Date{2025, 1, 1}, -1},
	}

	for _, tt := range tests {
		if got := tt.a.Compare(tt.b); got != tt.want {
			t.Errorf("%v.Compare(%v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
	if !(Date{2025, 1, 4}).Before(Date{2025, 1, 5}) {
		t.Error("expected Before to be true")
	}
	if got := (Date{2025, 1, 5}).String(); got != "2025-01-05" {
		t.Errorf("String() = %q", got)
	}
}

func TestScanFolders(t *testing.T) {
	p := func(s string) string { return filepath.FromSlash(s) }
	input := []string{
		p("/srv/cam/2025/01/03/a.mp4"),
		p("/srv/cam/2025/01/05/a.mp4"),
		p("/srv/cam/2025/01/05/b.mp4"),
		p("/srv/cam/misc/clip.mp4"),
		p("/srv/cam/2025/1/06/bad.mp4"),
		p("/srv/cam/2024/12/31/z.mp4"),
		p("/srv/cam/2025/01/04/a.mp4"),
	}

	folders := ScanFolders(input)

	var gotPaths []string
	for _, f := range folders {
		gotPaths = append(gotPaths, f.Path)
	}
	wantPaths := []string{
		p("/srv/cam/2025/01/05"),
		p("/srv/cam/2025/01/04"),
		p("/srv/cam/2025/01/03"),
		p("/srv/cam/2024/12/31"),
	}
	if !reflect.DeepEqual(gotPaths, wantPaths) {
		t.Fatalf("folders = %v, want %v", gotPaths, wantPaths)
	}

	wantFiles := []string{p("/srv/cam/2025/01/05/a.mp4"), p("/srv/cam/2025/01/05/b.mp4")}
	if !reflect.DeepEqual(folders[0].Files, wantFiles) {
		t.Errorf("files = %v, want %v", folders[0].Files, wantFiles)
	}
}

func TestScanFolders_SameDayTieBreak(t *testing.T) {
	p := func(s string) string { return filepath.FromSlash(s) }
	folders := ScanFolders([]string{
		p("/srv/a/2025/01/05/x.mp4"),
		p("/srv/b/2025/01/05/x.mp4"),
		p("/srv/a/2025/01/06/x.mp4"),
	})

	want := []string{p("/srv/a/2025/01/06"), p("/srv/b/2025/01/05"), p("/srv/a/2025/01/05")}
	for i, f := range folders {
		if f.Path != want[i] {
			t.Errorf("folders[%d] = %q, want %q", i, f.Path, want[i])
		}
	}
}

func TestScanFolders_Empty(t *testing.T) {
	if folders := ScanFolders(nil); len(folders) != 0 {
		t.Errorf("expected no folders, got %v", folders)
	}
}

func TestGroupByFolder(t *testing.T) {
	p := func(s string) string { return filepath.FromSlash(s) }
	groups := GroupByFolder([]string{
		p("/srv/2025/01/05/a.mp4"),
		p("/srv/2025/01/04/c.mp4"),
		p("/srv/2025/01/05/b.mp4"),
	})

	if !reflect.DeepEqual(groups[p("/srv/2025/01/05")], []string{"a.mp4", "b.mp4"}) {
		t.Errorf("unexpected group: %v", groups[p("/srv/2025/01/05")])
	}
	if !reflect.DeepEqual(groups[p("/srv/2025/01/04")], []string{"c.mp4"}) {
		t.Errorf("unexpected group: %v", groups[p("/srv/2025/01/04")])
	}
}
