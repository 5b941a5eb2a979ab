package views

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"io/fs"
)

//go:embed templates
var viewsFS embed.FS

var pageTmpl *template.Template

const (
	dashboardTemplate = "dashboard.html"
	liveTemplate      = "live.html"
	alertTemplate     = "alert.html"
)

// loadTemplatesFromFS loads the page templates from dir inside fsys.
// Tests use it to exercise failures.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	// templates are named by base name: "dashboard.html", "live.html", "alert.html"
	pageTmpl, err = template.ParseFS(sub, "*.html", "partials/*.html")
	if err != nil {
		return err
	}
	return nil
}

// LoadTemplates loads the embedded templates. Call during startup before
// serving requests.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

var errNotLoaded = errors.New("templates not loaded: call views.LoadTemplates during startup")

// Option is one entry of a select box.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

type DashboardData struct {
	Kinds   []Option
	Filters []Option
	// Current form values, echoed back into the inputs.
	Date      string
	StartDate string
	EndDate   string
	Month     string
	Year      string
	Minute    string
	Safety    bool
	// Query strings for the embedded chart frames and links.
	// They are pre-encoded so the template does not escape them again.
	HistoricalQuery template.URL
	LiveQuery       template.URL
	DownloadDate    string
}

func RenderDashboard(w io.Writer, data *DashboardData) error {
	if pageTmpl == nil {
		return errNotLoaded
	}
	return pageTmpl.ExecuteTemplate(w, dashboardTemplate, data)
}

// LiveRow is one line of the live readings table.
type LiveRow struct {
	ID    int64
	Data  string
	Value string
}

type LiveData struct {
	Title string
	Unit  string
	Rows  []LiveRow
	// Minute is set while the live view is paused on one minute.
	Minute string
	// Refresh is the meta refresh period in seconds; 0 disables it.
	Refresh    int
	ChartQuery template.URL
	Alert      string
}

// RenderLivePartial renders the live fragment: chart frame and readings table.
func RenderLivePartial(w io.Writer, data *LiveData) error {
	if pageTmpl == nil {
		return errNotLoaded
	}
	return pageTmpl.ExecuteTemplate(w, liveTemplate, data)
}

// RenderAlert renders a standalone page holding msg, shown in place of a
// chart with no data.
func RenderAlert(w io.Writer, msg string) error {
	if pageTmpl == nil {
		return errNotLoaded
	}
	return pageTmpl.ExecuteTemplate(w, alertTemplate, msg)
}
