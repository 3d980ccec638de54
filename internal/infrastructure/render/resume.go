package render

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/talentoplus/hr-system/internal/core/domain"
)

const resumeTemplate = `CURRICULUM VITAE
================

{{.FullName}}
Documento: {{.Document}}
Correo: {{.Email}}
{{if .Phone}}Teléfono: {{.Phone}}
{{end}}{{if .Address}}Dirección: {{.Address}}
{{end}}
Cargo: {{.Position}}
Departamento: {{.Department}}
Fecha de ingreso: {{.HireDate}}
Estado: {{.Status}}
{{if .EducationLevel}}Nivel educativo: {{.EducationLevel}}
{{end}}{{if .Profile}}
Perfil
------
{{.Profile}}
{{end}}`

var resumeTmpl = template.Must(template.New("resume").Parse(resumeTemplate))

// TextResumeRenderer renders an employee profile as a plain-text resume
// suitable for download.
type TextResumeRenderer struct{}

func NewTextResumeRenderer() *TextResumeRenderer {
	return &TextResumeRenderer{}
}

func (r *TextResumeRenderer) Render(_ context.Context, e *domain.Employee, departmentName string) ([]byte, error) {
	data := map[string]string{
		"FullName":       e.FullName(),
		"Document":       e.Document,
		"Email":          e.Email,
		"Phone":          e.Phone,
		"Address":        e.Address,
		"Position":       e.Position,
		"Department":     departmentName,
		"HireDate":       e.HireDate.Format("2006-01-02"),
		"Status":         string(e.Status),
		"EducationLevel": string(e.EducationLevel),
		"Profile":        e.Profile,
	}
	var buf bytes.Buffer
	if err := resumeTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render resume: %w", err)
	}
	return buf.Bytes(), nil
}
