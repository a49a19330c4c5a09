package taxforms

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/a3tai/pdf-form-filler/internal/checker"
	"github.com/a3tai/pdf-form-filler/internal/config"
	"github.com/a3tai/pdf-form-filler/internal/fielddef"
	"github.com/a3tai/pdf-form-filler/internal/pdf"
	"github.com/a3tai/pdf-form-filler/internal/pdf/fonts"
	"github.com/a3tai/pdf-form-filler/internal/pdf/security"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/image/font/gofont/goregular"
)

// Service fills and checks tax forms. It holds no per-request state, so
// one Service serves concurrent requests.
type Service struct {
	config        *config.Config
	templates     *TemplateCache
	output        *security.PathValidator
	valueFont     *fonts.TrueType
	signatureFont *fonts.TrueType
	logger        *log.Logger
}

// NewService creates a service from cfg. Font files are read once here.
func NewService(cfg *config.Config, logger *log.Logger) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = log.Default()
	}

	templates, err := NewTemplateCache(cfg.TemplateDirectory, cfg.MaxFileSize)
	if err != nil {
		return nil, err
	}
	output, err := security.NewPathValidator(cfg.OutputDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create output path validator: %w", err)
	}

	files := pdf.NewValidator(cfg.MaxFileSize)
	valueFontData := goregular.TTF
	if cfg.FontPath != "" {
		if valueFontData, err = files.ReadFile(cfg.FontPath); err != nil {
			return nil, fmt.Errorf("failed to load font: %w", err)
		}
	}
	valueFont, err := fonts.ParseTrueType(valueFontData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	var signatureFont *fonts.TrueType
	if cfg.SignatureFontPath != "" {
		data, err := files.ReadFile(cfg.SignatureFontPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load signature font: %w", err)
		}
		if signatureFont, err = fonts.ParseTrueType(data); err != nil {
			return nil, fmt.Errorf("failed to parse signature font: %w", err)
		}
	}

	return &Service{
		config:        cfg,
		templates:     templates,
		output:        output,
		valueFont:     valueFont,
		signatureFont: signatureFont,
		logger:        logger,
	}, nil
}

// Templates returns the template cache
func (s *Service) Templates() *TemplateCache {
	return s.templates
}

// Fill renders a filled, finalized copy of the form's template
func (s *Service) Fill(ctx context.Context, formType string, values []byte) ([]byte, error) {
	out, err := s.fill(ctx, uuid.NewString(), FillRequest{FormType: formType, Values: values})
	if err != nil {
		return nil, err
	}
	return out.data, nil
}

// FillFile fills a form and writes it to the output directory
func (s *Service) FillFile(ctx context.Context, req FillRequest) (*FillResult, error) {
	id := uuid.NewString()
	out, err := s.fill(ctx, id, req)
	if err != nil {
		return nil, err
	}

	name := req.Output
	if name == "" {
		name = fmt.Sprintf("%s-%s.pdf", strings.ToLower(string(out.form.Type)), id)
	}
	if name, err = s.output.Resolve(name); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	if err := os.WriteFile(name, out.data, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", name, err)
	}
	s.logger.Printf("[%s] Wrote %s (%d bytes)", id, name, len(out.data))

	return &FillResult{
		FormType:  out.form.Type,
		RequestID: id,
		Path:      name,
		Size:      int64(len(out.data)),
		Pages:     out.pages,
	}, nil
}

// filled is one rendered form
type filled struct {
	data  []byte
	form  *Form
	pages int
}

func (s *Service) fill(ctx context.Context, id string, req FillRequest) (*filled, error) {
	form, err := Lookup(req.FormType)
	if err != nil {
		return nil, err
	}

	var values Values
	if !req.FieldNames {
		values = form.NewValues()
		if err := json.Unmarshal(req.Values, values); err != nil {
			return nil, fmt.Errorf("invalid %s values: %w", form.Type, err)
		}
	}

	template, err := s.templates.Load(form)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.config.IsDebug() {
		s.logger.Printf("[%s] Filling %s from %s", id, form.Type, form.Template)
	}

	doc, err := pdf.Open(template)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s template: %w", form.Type, err)
	}
	doc.SetLogger(s.logger)

	bundle, err := s.fontBundle(doc)
	if err != nil {
		return nil, err
	}

	opts := FillOptions{
		SignatureFont: s.signatureFont,
		Logger:        s.logger,
		Debug:         s.config.IsDebug(),
	}
	if req.FieldNames {
		err = form.FillNamesPDF(doc, bundle, opts)
	} else {
		err = form.FillPDF(doc, values, bundle, opts)
	}
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := pdf.FlattenForm(doc, pdf.FlattenOptions{UseFallbackReadonly: form.UseFallbackReadonly}); err != nil {
		return nil, fmt.Errorf("failed to finalize %s: %w", form.Type, err)
	}

	pages := doc.PageCount()
	data, err := doc.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", form.Type, err)
	}
	if err := pdf.VerifyOutput(data, pages); err != nil {
		return nil, err
	}

	if s.config.IsDebug() {
		s.logger.Printf("[%s] Filled %s: %d pages, %d bytes", id, form.Type, pages, len(data))
	}
	return &filled{data: data, form: form, pages: pages}, nil
}

// fontBundle embeds the value font into doc and pairs it with the
// standard fallback font
func (s *Service) fontBundle(doc *pdf.Document) (pdf.FontBundle, error) {
	fallback, err := doc.StandardFont(fonts.Helvetica)
	if err != nil {
		return pdf.FontBundle{}, fmt.Errorf("failed to add fallback font: %w", err)
	}
	primary, err := doc.EmbedTrueType(s.valueFont, s.config.SubsetFonts)
	if err != nil {
		return pdf.FontBundle{}, fmt.Errorf("failed to embed font: %w", err)
	}
	return pdf.FontBundle{Primary: primary, Fallback: fallback}, nil
}

// Check verifies the field definitions of the named forms, all forms when
// none are named, against their templates
func (s *Service) Check(ctx context.Context, formTypes ...string) ([]checker.Result, error) {
	forms := All()
	if len(formTypes) > 0 {
		forms = nil
		for _, name := range formTypes {
			form, err := Lookup(name)
			if err != nil {
				return nil, err
			}
			forms = append(forms, form)
		}
	}

	results := make([]checker.Result, len(forms))
	var targets []checker.Target
	var slots []int
	for i, form := range forms {
		results[i].Name = string(form.Type)
		data, err := s.templates.Load(form)
		if err != nil {
			results[i].Err = fmt.Errorf("form %s: %w", form.Type, err)
			continue
		}
		targets = append(targets, checker.Target{Name: string(form.Type), Bytes: data, Fields: form.Fields})
		slots = append(slots, i)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	checked, _ := checker.Run(targets)
	for j, r := range checked {
		results[slots[j]] = r
	}

	var errs error
	for _, r := range results {
		errs = multierr.Append(errs, r.Err)
	}
	return results, errs
}

// Fields lists the fields of a form's template, marking the ones its
// configuration references
func (s *Service) Fields(req FieldsRequest) (*FieldsResult, error) {
	form, err := Lookup(req.FormType)
	if err != nil {
		return nil, err
	}
	data, err := s.templates.Load(form)
	if err != nil {
		return nil, err
	}

	result, err := Inspect(data, form, req.IncludeText)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect %s template: %w", form.Type, err)
	}
	result.Template = form.Template
	return result, nil
}

// Inspect builds the field inventory of an arbitrary PDF. When form is not
// nil, fields its configuration references are marked.
func Inspect(data []byte, form *Form, includeText bool) (*FieldsResult, error) {
	var referenced []string
	result := &FieldsResult{}
	if form != nil {
		referenced = fielddef.AllPaths(form.Fields)
		result.FormType = form.Type
	}

	infos, pages, err := ListFields(data, referenced)
	if err != nil {
		return nil, err
	}
	result.Pages = pages
	result.Fields = infos
	for _, f := range infos {
		if !f.Referenced {
			result.Unreferenced++
		}
	}

	if includeText {
		if result.PageText, err = pdf.ExtractText(data); err != nil {
			return nil, fmt.Errorf("failed to extract text: %w", err)
		}
	}
	return result, nil
}

// ListFields describes every terminal field of the PDF in data. Fields
// named in referenced are marked. The page count is returned alongside.
func ListFields(data []byte, referenced []string) ([]FieldInfo, int, error) {
	doc, err := pdf.Open(data)
	if err != nil {
		return nil, 0, err
	}
	form, err := doc.Form()
	if err != nil {
		return nil, 0, err
	}

	refs := make(map[string]struct{}, len(referenced))
	for _, path := range referenced {
		refs[path] = struct{}{}
	}

	names := form.FieldNames()
	infos := make([]FieldInfo, 0, len(names))
	for _, name := range names {
		field, err := form.Field(name)
		if err != nil {
			return nil, 0, err
		}
		info := FieldInfo{
			Name:     name,
			Kind:     field.Kind().String(),
			Page:     field.Page(),
			ReadOnly: field.ReadOnly(),
		}
		if n, ok := field.MaxLen(); ok {
			info.MaxLen = n
		}
		_, info.Referenced = refs[name]
		infos = append(infos, info)
	}
	return infos, doc.PageCount(), nil
}
