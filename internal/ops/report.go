package ops

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/sadopc/disklens/internal/model"
	"github.com/sadopc/disklens/internal/util"
)

// reportDepth is how many levels below the root a report lists.
const reportDepth = 3

// reportNode is one row of a rendered report, children sorted by size.
type reportNode struct {
	Name     string
	Icon     string
	Class    string
	Size     string
	Percent  float64
	BarWidth int
	Depth    int
	Open     bool
	Children []reportNode
}

func buildReportTree(n *model.Node, total int64, depth int) reportNode {
	pct := n.Percentage(total)
	rn := reportNode{
		Name:     n.Name,
		Icon:     typeIcon(n.Type),
		Class:    "file",
		Size:     util.FormatSize(n.Size),
		Percent:  pct,
		BarWidth: int(min(pct*2, 200)),
		Depth:    depth,
		Open:     depth == 0,
	}
	if !n.IsDir() {
		return rn
	}
	rn.Class = "dir"
	if depth >= reportDepth || len(n.Children) == 0 {
		return rn
	}

	children := make([]*model.Node, len(n.Children))
	copy(children, n.Children)
	model.SortChildren(children, model.DefaultSort())
	rn.Children = make([]reportNode, 0, len(children))
	for _, c := range children {
		rn.Children = append(rn.Children, buildReportTree(c, total, depth+1))
	}
	return rn
}

func typeIcon(t model.NodeType) string {
	switch t {
	case model.TypeDirectory:
		return "📁"
	case model.TypeSymlink:
		return "🔗"
	case model.TypeOther:
		return "❓"
	default:
		return "📄"
	}
}

// ExportMarkdown writes a Markdown report of result: scan totals, the tree
// down to three levels below the root and the recorded errors.
func ExportMarkdown(result *model.ScanResult, path string) error {
	return writeTarget(path, func(w io.Writer) error {
		return writeMarkdown(w, result)
	})
}

func writeMarkdown(out io.Writer, result *model.ScanResult) error {
	ew := &errWriter{w: out}

	ew.WriteString("# DiskLens Report\n\n")
	fmt.Fprintf(ew, "- **Path:** %s\n", result.ScanPath)
	fmt.Fprintf(ew, "- **Total Size:** %s\n", util.FormatSize(result.TotalSize))
	fmt.Fprintf(ew, "- **Files:** %d\n", result.TotalFiles)
	fmt.Fprintf(ew, "- **Directories:** %d\n", result.TotalDirs)
	fmt.Fprintf(ew, "- **Scan Duration:** %.2fs\n\n", result.Duration.Seconds())

	ew.WriteString("## Directory Tree\n\n")
	ew.WriteString("| Name | Size | % |\n")
	ew.WriteString("|------|------|---|\n")
	writeMarkdownRows(ew, buildReportTree(result.Root, result.TotalSize, 0))

	if len(result.Errors) > 0 {
		fmt.Fprintf(ew, "\n## Errors (%d total)\n\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Fprintf(ew, "- **%s**: %s\n", e.Kind, markdownCell(e.Path))
		}
	}
	return ew.err
}

func writeMarkdownRows(ew *errWriter, rn reportNode) {
	// Non-breaking spaces survive Markdown's whitespace collapsing.
	indent := strings.Repeat("\u00a0\u00a0", rn.Depth)
	fmt.Fprintf(ew, "| %s%s %s | %s | %.1f%% |\n", indent, rn.Icon, markdownCell(rn.Name), rn.Size, rn.Percent)
	for _, c := range rn.Children {
		writeMarkdownRows(ew, c)
	}
}

var markdownEscaper = strings.NewReplacer("|", `\|`, "\n", " ", "\r", " ")

func markdownCell(s string) string {
	return markdownEscaper.Replace(s)
}

// ExportHTML writes a standalone HTML report of result with a collapsible
// tree down to three levels below the root.
func ExportHTML(result *model.ScanResult, path string) error {
	return writeTarget(path, func(w io.Writer) error {
		return writeHTML(w, result)
	})
}

type htmlReport struct {
	Path     string
	Total    string
	Files    int64
	Dirs     int64
	Duration string
	Root     reportNode
	Errors   []model.ScanError
}

func writeHTML(out io.Writer, result *model.ScanResult) error {
	return htmlTemplate.Execute(out, htmlReport{
		Path:     result.ScanPath,
		Total:    util.FormatSize(result.TotalSize),
		Files:    result.TotalFiles,
		Dirs:     result.TotalDirs,
		Duration: fmt.Sprintf("%.2fs", result.Duration.Seconds()),
		Root:     buildReportTree(result.Root, result.TotalSize, 0),
		Errors:   result.Errors,
	})
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>DiskLens Report</title>
<style>
body { font-family: -apple-system, system-ui, sans-serif; margin: 20px; background: #1a1a2e; color: #e0e0e0; }
h1 { color: #00d4ff; }
h2 { color: #5dade2; margin-top: 30px; }
.summary { background: #16213e; padding: 15px; border-radius: 8px; margin-bottom: 20px; }
.summary p { margin: 6px 0; }
.summary strong { color: #00d4ff; }
.node { display: inline-flex; align-items: center; padding: 4px 0; }
.name { min-width: 300px; }
.size { min-width: 100px; text-align: right; color: #aaa; margin-right: 10px; }
.pct { min-width: 50px; text-align: right; color: #888; margin-right: 10px; }
.bar { display: inline-block; width: 200px; height: 16px; background: #0f3460; border-radius: 3px; overflow: hidden; }
.bar-fill { display: block; height: 100%; background: linear-gradient(90deg, #00d4ff, #0f3460); }
.dir { color: #5dade2; }
.file { color: #aaa; }
.error-list { background: #2c1a1a; padding: 15px; border-radius: 8px; border-left: 3px solid #e74c3c; }
.error { color: #e74c3c; }
details, .leaf { margin-left: 20px; }
summary { cursor: pointer; padding: 4px; }
</style>
</head>
<body>
<h1>DiskLens Report</h1>
<div class="summary">
<p><strong>Path:</strong> {{.Path}}</p>
<p><strong>Total Size:</strong> {{.Total}}</p>
<p><strong>Files:</strong> {{.Files}}</p>
<p><strong>Directories:</strong> {{.Dirs}}</p>
<p><strong>Scan Duration:</strong> {{.Duration}}</p>
</div>
<h2>Directory Tree</h2>
{{template "node" .Root}}
{{- if .Errors}}
<h2>Errors ({{len .Errors}} total)</h2>
<div class="error-list">
<ul>
{{- range .Errors}}
<li class="error"><strong>{{.Kind}}</strong>: {{.Path}}</li>
{{- end}}
</ul>
</div>
{{- end}}
</body>
</html>
{{define "row"}}<span class="node"><span class="name {{.Class}}">{{.Icon}} {{.Name}}</span><span class="size">{{.Size}}</span><span class="pct">{{printf "%.1f" .Percent}}%</span><span class="bar"><span class="bar-fill" style="width:{{.BarWidth}}px"></span></span></span>{{end}}
{{define "node"}}
{{- if .Children}}
<details{{if .Open}} open{{end}}>
<summary>{{template "row" .}}</summary>
{{- range .Children}}{{template "node" .}}{{end}}
</details>
{{- else}}
<div class="leaf">{{template "row" .}}</div>
{{- end}}
{{- end}}
`))
