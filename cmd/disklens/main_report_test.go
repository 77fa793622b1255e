package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/sadopc/disklens/internal/config"
	"github.com/sadopc/disklens/internal/model"
)

func reportFixture() *model.ScanResult {
	root := model.NewDirectory("/data", "data", []*model.Node{
		model.NewFile("/data/small", "small", 10, time.Time{}, 0),
		model.NewDirectory("/data/node_modules", "node_modules", []*model.Node{
			model.NewFile("/data/node_modules/x.js", "x.js", 5000, time.Time{}, 0),
		}),
		model.NewFile("/data/video.mp4", "video.mp4", 4000, time.Time{}, 0),
		model.NewFile("/data/tiny", "tiny", 1, time.Time{}, 0),
	})
	errs := []model.ScanError{{Path: "/data/locked", Kind: model.ErrPermissionDenied, Message: "permission denied"}}
	return model.NewScanResult(root, "/data", time.Second, errs, time.Now())
}

func TestVisibleItems_HidesIgnoredAndMerges(t *testing.T) {
	result := reportFixture()
	settings := config.Default()
	settings.IgnorePatterns = []string{"node_*"}
	settings.MergeThreshold = 0.01

	items := visibleItems(result.Root, settings, model.SortBySize)
	if len(items) != 2 {
		t.Fatalf("expected video.mp4 and Others, got %+v", items)
	}
	if items[0].Name != "video.mp4" {
		t.Fatalf("expected largest visible child first, got %q", items[0].Name)
	}
	if !items[1].Merged || items[1].MergedCount != 2 {
		t.Fatalf("expected small and tiny merged, got %+v", items[1])
	}
	// Percentages stay relative to the whole root.
	if items[0].Percentage >= 50 {
		t.Fatalf("expected video.mp4 under half of the root, got %.1f%%", items[0].Percentage)
	}
	if len(result.Root.Children) != 4 || result.Root.Children[0].Name != "small" {
		t.Fatal("root children must not be modified")
	}
}

func TestVisibleItems_SortByName(t *testing.T) {
	settings := config.Default()
	settings.MergeThreshold = 0.0001

	items := visibleItems(reportFixture().Root, settings, model.SortByName)
	var names []string
	for _, it := range items {
		names = append(names, it.Name)
	}
	if strings.Join(names, ",") != "node_modules,small,tiny,video.mp4" {
		t.Fatalf("unexpected order %v", names)
	}
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, reportFixture(), config.Default(), reportOptions{
		cached:     true,
		sort:       model.SortBySize,
		top:        2,
		find:       "VIDEO",
		showErrors: true,
		width:      100,
	})
	out := ansi.Strip(buf.String())

	for _, want := range []string{
		"(cached)",
		"1 errors",
		"node_modules/",
		"Largest 2 of 6 entries:",
		"/data/node_modules/",
		`1 paths match "VIDEO"`,
		"/data/video.mp4",
		"/data/locked: permission denied",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in report:\n%s", want, out)
		}
	}
}
