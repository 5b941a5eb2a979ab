package views

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoadTemplates_success(t *testing.T) {
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates() = %v; want nil", err)
	}
	if pageTmpl == nil {
		t.Fatal("LoadTemplates() left pageTmpl nil")
	}
}

func TestLoadTemplates_definesRenderedNames(t *testing.T) {
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates() = %v; want nil", err)
	}
	for _, name := range []string{dashboardTemplate, liveTemplate, alertTemplate} {
		if pageTmpl.Lookup(name) == nil {
			t.Errorf("template %q not defined; have %s", name, pageTmpl.DefinedTemplates())
		}
	}
}

func TestLoadTemplates_failure(t *testing.T) {
	t.Cleanup(func() {
		if err := LoadTemplates(); err != nil {
			t.Fatalf("reload templates: %v", err)
		}
	})

	t.Run("no templates", func(t *testing.T) {
		if err := loadTemplatesFromFS(fstest.MapFS{}, "templates"); err == nil {
			t.Fatal("loadTemplatesFromFS(empty) = nil; want error")
		}
	})

	t.Run("bad syntax", func(t *testing.T) {
		badFS := fstest.MapFS{
			"templates/dashboard.html":     {Data: []byte("{{ .")},
			"templates/partials/live.html": {Data: []byte("ok")},
		}
		if err := loadTemplatesFromFS(badFS, "templates"); err == nil {
			t.Fatal("loadTemplatesFromFS(badFS) = nil; want error")
		}
	})
}

func TestRender_notLoaded(t *testing.T) {
	prev := pageTmpl
	pageTmpl = nil
	t.Cleanup(func() { pageTmpl = prev })

	var buf bytes.Buffer
	for name, err := range map[string]error{
		"dashboard": RenderDashboard(&buf, &DashboardData{}),
		"live":      RenderLivePartial(&buf, &LiveData{}),
		"alert":     RenderAlert(&buf, "x"),
	} {
		if err == nil || !strings.Contains(err.Error(), "not loaded") {
			t.Errorf("%s: err = %v; want message containing \"not loaded\"", name, err)
		}
	}
}

func TestRenderDashboard(t *testing.T) {
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}
	data := &DashboardData{
		Kinds:           []Option{{Value: "vazao", Label: "Vazão"}, {Value: "altura", Label: "Altura", Selected: true}},
		Filters:         []Option{{Value: "dia", Label: "Dia", Selected: true}},
		Date:            "2025-02-01",
		Safety:          true,
		HistoricalQuery: "filter=dia&type=altura",
		LiveQuery:       "type=altura",
		DownloadDate:    "2025-02-01",
	}
	var buf bytes.Buffer
	if err := RenderDashboard(&buf, data); err != nil {
		t.Fatalf("RenderDashboard: %v", err)
	}
	html := buf.String()
	for _, want := range []string{
		`<option value="altura" selected>Altura</option>`,
		`src="/charts/historico?filter=dia&amp;type=altura"`,
		`src="/partials/live?type=altura"`,
		`/download?date=2025-02-01`,
		`value="1" checked`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
}

func TestRenderLivePartial(t *testing.T) {
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}

	t.Run("live refreshes and lists rows", func(t *testing.T) {
		var buf bytes.Buffer
		err := RenderLivePartial(&buf, &LiveData{
			Title:      "Vazão ao vivo",
			Unit:       "Vazão (m³/s)",
			Rows:       []LiveRow{{ID: 7, Data: "01/02/2025 10:00:00", Value: "6.40"}},
			Refresh:    5,
			ChartQuery: "type=vazao",
		})
		if err != nil {
			t.Fatalf("RenderLivePartial: %v", err)
		}
		html := buf.String()
		for _, want := range []string{`content="5"`, "<td>7</td>", "6.40", `/charts/live?type=vazao`} {
			if !strings.Contains(html, want) {
				t.Errorf("live partial missing %q", want)
			}
		}
	})

	t.Run("paused does not refresh", func(t *testing.T) {
		var buf bytes.Buffer
		if err := RenderLivePartial(&buf, &LiveData{Minute: "10:15"}); err != nil {
			t.Fatalf("RenderLivePartial: %v", err)
		}
		html := buf.String()
		if strings.Contains(html, "http-equiv") {
			t.Error("paused partial must not auto refresh")
		}
		if !strings.Contains(html, "10:15") {
			t.Error("paused partial should show the minute")
		}
	})

	t.Run("alert replaces chart", func(t *testing.T) {
		var buf bytes.Buffer
		if err := RenderLivePartial(&buf, &LiveData{Refresh: 5, Alert: "Nenhum dado disponível para o filtro aplicado."}); err != nil {
			t.Fatalf("RenderLivePartial: %v", err)
		}
		html := buf.String()
		if !strings.Contains(html, "Nenhum dado disponível") || strings.Contains(html, "<iframe") {
			t.Errorf("alert partial = %s", html)
		}
	})
}

func TestRenderAlert(t *testing.T) {
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}
	var buf bytes.Buffer
	if err := RenderAlert(&buf, "<sem dados>"); err != nil {
		t.Fatalf("RenderAlert: %v", err)
	}
	if !strings.Contains(buf.String(), "&lt;sem dados&gt;") {
		t.Errorf("alert not escaped: %s", buf.String())
	}
}
