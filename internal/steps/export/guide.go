package export

import (
	"embed"
	"os"
	"path/filepath"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Color is one entry of the suggested report palette.
type Color struct {
	Role string
	Hex  string
}

// Palette is the suggested report colour scheme.
var Palette = []Color{
	{"Primary:", "#1E4B87"},
	{"Secondary:", "#FF6B00"},
	{"Success:", "#28A745"},
	{"Warning:", "#FFC107"},
}

type guideView struct {
	Dir           string
	Files         []File
	SalesFile     string
	TemplateGuide string
	PrimaryColor  string
	Timestamp     string
	SalesRows     int
}

func guideData(timestamp string, files []File, salesRows int) guideView {
	v := guideView{
		Files:         files,
		TemplateGuide: TemplateGuideFile,
		PrimaryColor:  Palette[0].Hex,
		Timestamp:     timestamp,
		SalesRows:     salesRows,
	}
	if len(files) > 0 {
		v.Dir = filepath.Dir(files[0].Path)
		v.SalesFile = files[0].Name
	}
	return v
}

func writeGuide(path string, v guideView) error {
	return render(path, "guide.txt.tmpl", v)
}

func writeTemplateGuide(path string) error {
	return render(path, "template_guide.txt.tmpl", struct{ Colors []Color }{Palette})
}

func render(path, name string, data any) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return templates.ExecuteTemplate(f, name, data)
}
