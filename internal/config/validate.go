package config

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Pipeline.
//
// Path is a dotted path into the config using the JSON field names (e.g.
// "storage.db.port", "destination.summary_table").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// identRe accepts the identifiers every supported backend takes unquoted:
// a letter or underscore followed by letters, digits or underscores.
var identRe = regexp.MustCompile(`^[\p{L}_][\p{L}\p{N}_]*$`)

// maxIdentLen is the Postgres identifier limit, the tightest of the backends.
const maxIdentLen = 63

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("ident", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return len(s) <= maxIdentLen && identRe.MatchString(s)
	})
	return v
}

// ValidatePipeline lints p and returns every issue found. It does not mutate
// p. Struct-tag rules run first, then the cross-field checks.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return []Issue{{Severity: SeverityError, Path: "", Message: err.Error()}}
		}
		for _, fe := range verrs {
			issues = append(issues, fieldIssue(fe))
		}
	}

	issues = append(issues, validateDB(p.Storage)...)
	issues = append(issues, validateTables(p)...)
	return issues
}

func fieldIssue(fe validator.FieldError) Issue {
	path := fe.Namespace()
	if i := strings.IndexByte(path, '.'); i >= 0 {
		path = path[i+1:]
	}

	var msg string
	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("%s must not be empty", path)
	case "oneof":
		msg = fmt.Sprintf("%s=%q is not supported; want one of: %s", path, fe.Value(), fe.Param())
	case "ident":
		msg = fmt.Sprintf("%s=%q is not a valid identifier (letters, digits and underscore, at most %d characters)",
			path, fe.Value(), maxIdentLen)
	case "min", "max":
		msg = fmt.Sprintf("%s=%v is out of range 1..65535", path, fe.Value())
	case "gte":
		msg = fmt.Sprintf("%s must not be negative", path)
	default:
		msg = fmt.Sprintf("%s fails %s=%s", path, fe.Tag(), fe.Param())
	}
	return Issue{Severity: SeverityError, Path: path, Message: msg}
}

// validateDB checks that enough connection detail is present for the kind.
func validateDB(s Storage) []Issue {
	var issues []Issue
	db := s.DB
	if strings.TrimSpace(db.DSN) != "" {
		return nil
	}

	if s.Kind == "sqlite" {
		if strings.TrimSpace(db.Database) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "storage.db.database",
				Message:  "sqlite needs storage.db.dsn or storage.db.database (file path or :memory:)",
			})
		}
		return issues
	}

	if strings.TrimSpace(db.Host) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.host",
			Message:  "storage.db.host must not be empty when storage.db.dsn is not set",
		})
	}
	if db.Password == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.db.password",
			Message:  "no password configured; set " + EnvPrefix + "_STORAGE_DB_PASSWORD if the server requires one",
		})
	}
	return issues
}

// validateTables rejects layouts where one write would clobber another table
// the run depends on.
func validateTables(p Pipeline) []Issue {
	var issues []Issue
	d := p.Destination

	if d.CleanedTable != "" && d.CleanedTable == d.SummaryTable {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "destination.summary_table",
			Message:  fmt.Sprintf("summary_table must differ from cleaned_table (both %q)", d.CleanedTable),
		})
	}

	if p.Source.Namespace == d.Namespace {
		for _, name := range []string{d.CleanedTable, d.SummaryTable} {
			if name != "" && name == p.Source.Table {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     "destination",
					Message:  fmt.Sprintf("destination %s.%s is the source table and would be replaced", d.Namespace, name),
				})
			}
		}
	}
	return issues
}
