package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/idilettant/seoaudit/audit"
)

var title = cases.Title(language.English)

// Markdown renders r as a human-readable document.
func Markdown(r audit.Report) ([]byte, error) {
	var buf bytes.Buffer
	md := markdown.NewMarkdown(&buf)

	switch report := r.(type) {
	case *audit.PageReport:
		writePage(md, report)
	case *audit.SiteCrawlReport:
		writeSite(md, "SEO Site Audit", report)
	case *audit.PreLaunchReport:
		writePreLaunch(md, report)
	default:
		return nil, fmt.Errorf("render markdown: unsupported report %T", r)
	}

	writeFooter(md)

	if err := md.Build(); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	return ensureNewline(buf.Bytes()), nil
}

func writePage(md *markdown.Markdown, report *audit.PageReport) {
	md.H1("SEO Page Audit")
	md.PlainText("")
	writeSummary(md, report.URL, report.Score, report.CriticalCount, report.WarningCount, report.PassedCount, report.Timestamp)
	writeAlert(md, report.CriticalCount, report.WarningCount)

	md.H2("Checks")
	md.PlainText("")
	writeFindings(md, report.Checks)
}

func writeSite(md *markdown.Markdown, heading string, report *audit.SiteCrawlReport) {
	md.H1(heading)
	md.PlainText("")
	writeSummary(md, report.URL, report.Score, report.CriticalCount, report.WarningCount, report.PassedCount, report.Timestamp)
	writeAlert(md, report.CriticalCount, report.WarningCount)

	if report.Lighthouse != nil {
		md.H2("Homepage Performance")
		md.PlainText("")
		rows := [][]string{}
		for _, category := range report.Lighthouse.Categories() {
			score := "n/a"
			if category.Available {
				score = strconv.Itoa(category.Score)
			}
			rows = append(rows, []string{category.Label, score})
		}
		md.Table(markdown.TableSet{Header: []string{"Category", "Score"}, Rows: rows})
		md.PlainText("")
	}

	md.H2("Site-Level Checks")
	md.PlainText("")
	writeFindings(md, report.SiteLevelChecks)

	md.H2("Pages")
	md.PlainText("")

	if len(report.Pages) == 0 {
		md.PlainText("No pages were audited.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(report.Pages))
	for _, page := range report.Pages {
		status := strconv.Itoa(page.Status)
		if page.Status == 0 {
			status = "-"
		}
		rows = append(rows, []string{
			cell(page.URL),
			status,
			strconv.Itoa(page.Score),
			strconv.Itoa(page.CriticalCount),
			strconv.Itoa(page.WarningCount),
			cell(orDash(page.Title)),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Status", "Score", "Critical", "Warnings", "Title"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, page := range report.Pages {
		issues := failing(page.Checks)
		if len(issues) == 0 {
			continue
		}

		md.PlainText("### " + page.URL)
		md.PlainText("")
		if page.ContentAnalysis != nil {
			md.PlainTextf("%d words, reading level %s, %.2f%% text to HTML.",
				page.ContentAnalysis.WordCount, page.ContentAnalysis.ReadingLevel, page.ContentAnalysis.ContentRatio)
			md.PlainText("")
		}
		writeFindings(md, issues)
	}
}

func writePreLaunch(md *markdown.Markdown, report *audit.PreLaunchReport) {
	writeSite(md, "SEO Pre-Launch Audit", &report.SiteCrawlReport)

	md.H2("Launch Checklist")
	md.PlainText("")
	md.BulletList(
		checkbox(report.Checklist.RobotsTxt)+" robots.txt present",
		checkbox(report.Checklist.Sitemap)+" sitemap.xml present",
		checkbox(report.Checklist.HTTPS)+" served over HTTPS",
		checkbox(report.Checklist.BrokenLinks == 0)+" "+strconv.Itoa(report.Checklist.BrokenLinks)+" broken links",
	)
	md.PlainText("")
}

func writeSummary(md *markdown.Markdown, url string, score, critical, warning, passed int, timestamp string) {
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"URL", "`" + url + "`"},
			{"Score", strconv.Itoa(score) + "/100"},
			{"Critical", strconv.Itoa(critical)},
			{"Warnings", strconv.Itoa(warning)},
			{"Passed", strconv.Itoa(passed)},
			{"Audited", timestamp},
		},
	})
	md.PlainText("")
}

func writeAlert(md *markdown.Markdown, critical, warning int) {
	switch {
	case critical > 0:
		md.Cautionf("%d critical issue(s) need attention.", critical)
	case warning > 0:
		md.Warningf("%d warning(s) found.", warning)
	default:
		md.Tip("No critical issues or warnings.")
	}
	md.PlainText("")
}

func writeFindings(md *markdown.Markdown, findings []audit.Finding) {
	if len(findings) == 0 {
		md.PlainText("No findings.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(findings))
	for _, f := range findings {
		rows = append(rows, []string{
			title.String(string(f.Severity)),
			"`" + f.ID + "`",
			strconv.Itoa(f.Impact),
			cell(f.Message),
			cell(orDash(f.Recommendation)),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Check", "Impact", "Message", "Recommendation"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, f := range findings {
		if len(f.Details) > 0 {
			md.Details(f.ID, strings.Join(f.Details, "\n"))
		}
	}
}

func writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by seoaudit*")
}

func failing(findings []audit.Finding) []audit.Finding {
	out := []audit.Finding{}
	for _, f := range findings {
		if f.Severity != audit.SeverityPassed {
			out = append(out, f)
		}
	}

	return out
}

func checkbox(ok bool) string {
	if ok {
		return "[x]"
	}

	return "[ ]"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}

// cell keeps table rows intact when text contains pipes or newlines.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)

	return strings.ReplaceAll(s, "\n", " ")
}
