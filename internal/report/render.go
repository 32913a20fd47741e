package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/kurihiro0119/repo-concierge/internal/domain"
)

// Format selects the output encoding
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a --format flag value
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want table, json or yaml)", s)
	}
}

const (
	maxCommitRows = 10
	barWidth      = 40
)

// Renderer writes analyses to a terminal or a pipe
type Renderer struct {
	w      io.Writer
	format Format
}

// NewRenderer creates a renderer for the given format
func NewRenderer(w io.Writer, format Format) *Renderer {
	return &Renderer{w: w, format: format}
}

// encode writes v as JSON or YAML. YAML goes through JSON first so both
// encodings share the same field names.
func (r *Renderer) encode(v any) error {
	if r.format == FormatJSON {
		enc := json.NewEncoder(r.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return err
	}
	enc := yaml.NewEncoder(r.w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(generic)
}

func (r *Renderer) section(title string) {
	fmt.Fprintf(r.w, "\n== %s ==\n", title)
}

func (r *Renderer) newTable(header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(r.w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	return table
}

// RenderAnalysis writes the header, scores, insights, commits and releases
func (r *Renderer) RenderAnalysis(a *domain.Analysis) error {
	if r.format != FormatTable {
		return r.encode(a)
	}

	fmt.Fprintf(r.w, "%s\n", a.Repo.Name)
	if a.Repo.Description != "" {
		fmt.Fprintf(r.w, "%s\n", a.Repo.Description)
	}

	r.section("Repository")
	table := r.newTable("Field", "Value")
	table.Append([]string{"URL", a.Repo.URL})
	table.Append([]string{"Stars", FormatNumber(int64(a.Repo.Stars))})
	table.Append([]string{"Forks", FormatNumber(int64(a.Repo.Forks))})
	table.Append([]string{"Watchers", FormatNumber(int64(a.Repo.Watchers))})
	table.Append([]string{"Open Issues", strconv.Itoa(a.Repo.OpenIssues)})
	table.Append([]string{"License", a.Repo.License})
	table.Append([]string{"Default Branch", a.Repo.DefaultBranch})
	table.Append([]string{"Created", FormatDate(a.Repo.Created)})
	table.Append([]string{"Updated", FormatDate(a.Repo.Updated)})
	table.Append([]string{"Age", a.Stats.Age.Display})
	table.Render()

	r.section("Scores")
	table = r.newTable("Score", "Value", "")
	table.Append([]string{"Activity", strconv.Itoa(a.Stats.Activity.Score), bar(float64(a.Stats.Activity.Score), 100)})
	table.Append([]string{"Popularity", strconv.FormatFloat(a.Stats.Popularity.Score, 'f', 1, 64), bar(a.Stats.Popularity.Score, 100)})
	table.Append([]string{"Health", strconv.Itoa(a.Stats.Health.Score), bar(float64(a.Stats.Health.Score), 100)})
	table.Render()
	fmt.Fprintf(r.w, "Commit frequency: %s, issue close rate: %s\n",
		a.Stats.Activity.CommitFrequency, a.Stats.Health.IssueCloseRate)

	r.insight("Technical Insights", a.Insights.Technical)
	r.insight("Business Insights", a.Insights.Business)
	r.insight("General Insights", a.Insights.General)

	r.section("Recent Commits")
	commits := a.Commits
	if len(commits) > maxCommitRows {
		commits = commits[:maxCommitRows]
	}
	table = r.newTable("SHA", "Message", "Author", "Date")
	for _, c := range commits {
		table.Append([]string{c.SHA, c.Message, c.Author, FormatDate(c.Date)})
	}
	table.Render()

	r.section("Releases")
	if len(a.Releases) == 0 {
		fmt.Fprintln(r.w, "No releases")
	} else {
		table = r.newTable("Name", "Tag", "Published", "Prerelease")
		for _, rel := range a.Releases {
			published := "-"
			if rel.Date != nil {
				published = FormatDate(*rel.Date)
			}
			table.Append([]string{rel.Name, rel.Tag, published, strconv.FormatBool(rel.Prerelease)})
		}
		table.Render()
	}
	if a.Assessment.LatestStableRelease != "" {
		fmt.Fprintf(r.w, "Latest stable: %s\n", a.Assessment.LatestStableRelease)
	}

	r.assessment(a.Assessment)
	return nil
}

func (r *Renderer) insight(title string, in domain.Insight) {
	r.section(title)
	fmt.Fprintln(r.w, in.Main)
	for _, d := range in.Details {
		fmt.Fprintf(r.w, "  - %s\n", d)
	}
}

func (r *Renderer) assessment(as domain.Assessment) {
	r.section("Assessment")
	table := r.newTable("Aspect", "Result")
	table.Append([]string{"Maturity", fmt.Sprintf("%s (%d)", as.Maturity.Level, as.Maturity.Score)})
	table.Append([]string{"Quality", fmt.Sprintf("%s (%d)", as.Quality.Level, as.Quality.Score)})
	table.Append([]string{"Language complexity", as.LanguageProfile.Complexity})
	table.Append([]string{"Commit styles", strings.Join(as.CommitPatterns.Patterns, ", ")})
	table.Render()

	if len(as.Recommendations) > 0 {
		table = r.newTable("Priority", "Recommendation", "Action")
		for _, rec := range as.Recommendations {
			table.Append([]string{string(rec.Priority), rec.Title, rec.Action})
		}
		table.Render()
	}
	if len(as.Risks) > 0 {
		table = r.newTable("Level", "Risk", "Impact")
		for _, risk := range as.Risks {
			table.Append([]string{string(risk.Level), risk.Description, risk.Impact})
		}
		table.Render()
	}
}

// RenderDashboard writes the analysis followed by its charts as ASCII bars
func (r *Renderer) RenderDashboard(view *domain.DashboardView) error {
	if r.format != FormatTable {
		return r.encode(view)
	}
	if err := r.RenderAnalysis(view.Analysis); err != nil {
		return err
	}

	d := view.Dashboard
	r.section("Languages (%)")
	r.bars(d.LanguageShare, 100)

	r.section("Commits, last 30 days")
	var peak int64
	for _, p := range d.CommitVolume {
		if p.Value > peak {
			peak = p.Value
		}
	}
	for _, p := range d.CommitVolume {
		fmt.Fprintf(r.w, "%s %-*s %d\n", p.Timestamp.Format("Jan 02"), barWidth, bar(float64(p.Value), float64(peak)), p.Value)
	}

	r.section("Top Contributors")
	var most float64
	for _, c := range d.TopContributors {
		if c.Value > most {
			most = c.Value
		}
	}
	r.bars(d.TopContributors, most)

	r.section("Issues")
	fmt.Fprintf(r.w, "Open   %-*s %d (%.1f%%)\n", barWidth, bar(d.IssueSplit.OpenPercentage, 100), d.IssueSplit.Open, d.IssueSplit.OpenPercentage)
	fmt.Fprintf(r.w, "Closed %-*s %d (%.1f%%)\n", barWidth, bar(d.IssueSplit.ClosedPercentage, 100), d.IssueSplit.Closed, d.IssueSplit.ClosedPercentage)

	r.section("Timeline")
	table := r.newTable("Milestone", "Date", "Activity")
	for _, p := range d.Timeline {
		table.Append([]string{p.Label, FormatDate(p.Date), strconv.Itoa(p.Activity)})
	}
	table.Render()
	return nil
}

func (r *Renderer) bars(values []domain.LabeledValue, scale float64) {
	if len(values) == 0 {
		fmt.Fprintln(r.w, "No data available")
		return
	}
	width := 0
	for _, v := range values {
		if len(v.Label) > width {
			width = len(v.Label)
		}
	}
	for _, v := range values {
		fmt.Fprintf(r.w, "%-*s %-*s %s\n", width, v.Label, barWidth, bar(v.Value, scale),
			strconv.FormatFloat(v.Value, 'f', -1, 64))
	}
}

// bar scales value against scale into at most barWidth characters
func bar(value, scale float64) string {
	if scale <= 0 || value <= 0 {
		return ""
	}
	n := int(value / scale * barWidth)
	if n > barWidth {
		n = barWidth
	}
	if n == 0 {
		n = 1
	}
	return strings.Repeat("#", n)
}

// RenderDependencies lists a manifest's dependencies
func (r *Renderer) RenderDependencies(deps *domain.Dependencies) error {
	if r.format != FormatTable {
		return r.encode(deps)
	}

	fmt.Fprintf(r.w, "%s/%s (%s, %d dependencies)\n", deps.Owner, deps.Repo, deps.Manifest, len(deps.Names))
	table := r.newTable("Package", "Version")
	for _, name := range deps.Names {
		table.Append([]string{name, deps.Dependencies[name]})
	}
	table.Render()
	return nil
}

// RenderValue writes any value; tables fall back to key/value rows of its JSON form
func (r *Renderer) RenderValue(v any) error {
	if r.format != FormatTable {
		return r.encode(v)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		fmt.Fprintln(r.w, string(data))
		return nil
	}
	table := r.newTable("Key", "Value")
	for _, key := range sortedKeys(fields) {
		table.Append([]string{key, fmt.Sprint(fields[key])})
	}
	table.Render()
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
