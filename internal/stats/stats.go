// Package stats parses the global_stats.json summary written by Gatling
// into a models.GlobalStats value.
package stats

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/spboyer/simarchive/internal/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// StatsFileName is the name of the aggregate statistics file inside a report.
const StatsFileName = "global_stats.json"

// ErrMalformedReport is returned when a stats file is missing, unreadable or
// does not have the expected structure.
var ErrMalformedReport = errors.New("malformed report")

//go:embed global_stats.schema.json
var schemaJSON string

// defaultPrinter is used to format schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

var statsSchema *jsonschema.Schema

func init() {
	var schemaDoc any
	if err := json.Unmarshal([]byte(schemaJSON), &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded global_stats.schema.json: %v", err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("global_stats.schema.json", schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add global_stats.schema.json resource: %v", err))
	}

	sch, err := compiler.Compile("global_stats.schema.json")
	if err != nil {
		panic(fmt.Sprintf("failed to compile global_stats.schema.json: %v", err))
	}
	statsSchema = sch
}

// Parse reads the stats file at path. Every failure wraps ErrMalformedReport.
func Parse(path string) (models.GlobalStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.GlobalStats{}, fmt.Errorf("%w: reading %s: %w", ErrMalformedReport, path, err)
	}

	st, err := ParseBytes(data)
	if err != nil {
		return models.GlobalStats{}, fmt.Errorf("%s: %w", path, err)
	}
	return st, nil
}

// ParseBytes parses the content of a stats file. Unknown fields are ignored.
func ParseBytes(data []byte) (models.GlobalStats, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.GlobalStats{}, fmt.Errorf("%w: invalid JSON: %w", ErrMalformedReport, err)
	}

	if errs := validate(doc); len(errs) > 0 {
		return models.GlobalStats{}, fmt.Errorf("%w: %s", ErrMalformedReport, strings.Join(errs, "; "))
	}

	var st models.GlobalStats
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.DecodeHookFuncType(placeholderAsZero),
		WeaklyTypedInput: true,
		Result:           &st,
	})
	if err != nil {
		return models.GlobalStats{}, fmt.Errorf("creating decoder: %w", err)
	}
	if err := decoder.Decode(doc); err != nil {
		return models.GlobalStats{}, fmt.Errorf("%w: %w", ErrMalformedReport, err)
	}

	return st, nil
}

// placeholderAsZero maps the "-" Gatling writes for metrics without samples
// (e.g. KO response times when every request succeeded) to 0.
func placeholderAsZero(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Float64 {
		return data, nil
	}
	s := strings.TrimSpace(data.(string))
	if s == "-" || s == "" {
		return 0.0, nil
	}
	return s, nil
}

func validate(doc any) []string {
	err := statsSchema.Validate(doc)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var errs []string
	collectSchemaErrors(ve, &errs)
	return errs
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(defaultPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}
