package scenario

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

type Status string

const (
	StatusPassed Status = "PASSED"
	StatusFailed Status = "FAILED"
)

// Result records the outcome of one scenario.
type Result struct {
	Key         string   `json:"key"`
	Status      Status   `json:"status"`
	Description string   `json:"description"`
	Errors      []string `json:"errors,omitempty"`
}

// Runner executes scenarios sequentially against a target, carrying a
// context of values saved from earlier responses. Scenarios within a
// run share the context with last-write-wins semantics.
type Runner struct {
	target     Target
	doc        *Document
	log        *zap.Logger
	context    map[string]any
	executed   map[string]struct{}
	inProgress map[string]struct{}
	now        func() time.Time
}

func NewRunner(target Target, doc *Document, log *zap.Logger) *Runner {
	return &Runner{
		target:     target,
		doc:        doc,
		log:        log,
		context:    map[string]any{},
		executed:   map[string]struct{}{},
		inProgress: map[string]struct{}{},
		now:        time.Now,
	}
}

// Context returns the value saved under key, if any.
func (r *Runner) Context(key string) (any, bool) {
	value, ok := r.context[key]
	return value, ok
}

// RunCategory executes every scenario in the named category in
// declaration order and returns the full result list. Individual
// failures never stop the run. The executed-steps set is cleared
// between top-level scenarios so prerequisites re-run across unrelated
// scenarios but not redundantly within one resolution chain.
func (r *Runner) RunCategory(name string) []Result {
	results := []Result{}

	cat := r.doc.Category(name)
	if cat == nil {
		return results
	}

	for _, entry := range cat.Entries {
		r.executed = map[string]struct{}{}
		r.inProgress = map[string]struct{}{}

		result := Result{
			Key:         entry.Key,
			Status:      StatusPassed,
			Description: entry.Scenario.Description,
		}

		if err := r.executePrerequisites(entry.Scenario.StepsToRunBeforeThisUseCase); err != nil {
			result.Status = StatusFailed
			result.Errors = []string{err.Error()}
			results = append(results, result)
			r.log.Error("scenario failed", zap.String("key", entry.Key), zap.String("error", err.Error()))
			continue
		}

		if errs := r.executeScenario(entry.Key, entry.Scenario); len(errs) > 0 {
			result.Status = StatusFailed
			result.Errors = errs
			r.log.Error("scenario failed", zap.String("key", entry.Key), zap.Strings("errors", errs))
		} else {
			r.log.Info("scenario passed", zap.String("key", entry.Key))
		}
		results = append(results, result)
	}

	return results
}

// executePrerequisites resolves and runs the given step references
// depth-first, skipping steps already executed in this chain. Both the
// executed and in-progress sets are keyed by the canonical name, so a
// bare key and its qualified form count as one step. A missing or
// failing prerequisite aborts the chain that requested it, and a
// reference that re-enters while still resolving is a cycle, reported
// the same way instead of recursing forever.
func (r *Runner) executePrerequisites(steps []string) error {
	for _, ref := range steps {
		key, sc := r.doc.Resolve(ref)
		if sc == nil {
			return fmt.Errorf("prerequisite step not found: %s", ref)
		}
		if _, done := r.executed[key]; done {
			continue
		}
		if _, active := r.inProgress[key]; active {
			return fmt.Errorf("prerequisite cycle detected at %s", ref)
		}

		r.inProgress[key] = struct{}{}
		err := r.executePrerequisites(sc.StepsToRunBeforeThisUseCase)
		delete(r.inProgress, key)
		if err != nil {
			return err
		}

		if errs := r.executeScenario(key, sc); len(errs) > 0 {
			return fmt.Errorf("prerequisite step %s failed: %s", ref, strings.Join(errs, "; "))
		}
		r.executed[key] = struct{}{}
	}
	return nil
}

// executeScenario substitutes placeholders, issues the call, validates
// the response and applies saveToContext directives. Every fault,
// including transport errors, malformed JSON and panics, comes back as
// a failure list, never a propagated error.
func (r *Runner) executeScenario(key string, sc *Scenario) (errs []string) {
	defer func() {
		if rec := recover(); rec != nil {
			errs = append(errs, fmt.Sprintf("scenario panicked: %v", rec))
		}
	}()

	r.log.Debug("executing scenario", zap.String("key", key))

	headers := map[string]string{}
	for k, v := range sc.Headers {
		headers[k] = fmt.Sprintf("%v", r.substitute(v))
	}

	endpoint := fmt.Sprintf("%v", r.substitute(sc.Endpoint))

	var bodyBytes []byte
	if sc.ReqBody != nil {
		processed := r.substitute(any(sc.ReqBody))
		data, err := json.Marshal(processed)
		if err != nil {
			return []string{fmt.Sprintf("failed to encode request body: %v", err)}
		}
		bodyBytes = data
		if _, ok := headers["Content-Type"]; !ok {
			headers["Content-Type"] = "application/json"
		}
	}

	resp, err := r.target.Do(strings.ToUpper(sc.Method), endpoint, headers, bodyBytes)
	if err != nil {
		return []string{fmt.Sprintf("request failed: %v", err)}
	}

	var parsedBody any
	if len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, &parsedBody); err != nil {
			parsedBody = string(resp.Body)
		}
	}
	respDoc := responseDocument(resp, parsedBody)

	errs = r.validateResponse(parsedBody, resp.Status, respDoc, sc.Expected)
	if len(errs) > 0 {
		return errs
	}

	r.saveToContext(sc.Expected.SaveToContext, respDoc)
	return nil
}

// responseDocument flattens the response into one JSON document so that
// dotted paths like "body.accessToken" or "headers.Content-Type"
// resolve uniformly.
func responseDocument(resp *Response, parsedBody any) []byte {
	headers := make(map[string]string, len(resp.Headers))
	for k := range resp.Headers {
		headers[k] = resp.Headers.Get(k)
	}
	doc, err := json.Marshal(map[string]any{
		"status":  resp.Status,
		"body":    parsedBody,
		"headers": headers,
	})
	if err != nil {
		return []byte(`{}`)
	}
	return doc
}

func (r *Runner) saveToContext(directives map[string]any, respDoc []byte) {
	for contextKey, directive := range directives {
		var resolved any

		switch value := directive.(type) {
		case string:
			if literal, ok := strings.CutPrefix(value, "literal:"); ok {
				resolved = literal
			} else {
				resolved = gjson.GetBytes(respDoc, value).Value()
			}
		default:
			resolved = value
		}

		r.context[contextKey] = resolved
		r.log.Debug("saved to context", zap.String("key", contextKey), zap.Any("value", resolved))
	}
}

// validateResponse runs every declared check and collects all failures;
// no check short-circuits another.
func (r *Runner) validateResponse(body any, status int, respDoc []byte, exp Expected) []string {
	var errs []string

	if exp.StatusCode != 0 && status != exp.StatusCode {
		errs = append(errs, fmt.Sprintf("expected status %d, got %d", exp.StatusCode, status))
	}

	if exp.ResponseType == "array" {
		if _, ok := body.([]any); !ok {
			errs = append(errs, fmt.Sprintf("expected array response, got %s", typeName(body)))
		}
	}

	if exp.ResponseShape != nil {
		obj, ok := body.(map[string]any)
		if !ok {
			errs = append(errs, fmt.Sprintf("expected object response, got %s", typeName(body)))
		} else {
			errs = append(errs, validateShape(obj, exp.ResponseShape, "")...)
		}
	}

	for key, expected := range exp.ResponseMatch {
		actual := gjson.GetBytes(respDoc, "body."+key)
		if !actual.Exists() {
			errs = append(errs, fmt.Sprintf("expected %s to be %v, but it is missing", key, expected))
			continue
		}
		if !deepEqual(expected, actual.Value()) {
			errs = append(errs, fmt.Sprintf("expected %s to be %v, got %v", key, expected, actual.Value()))
		}
	}

	for _, assertion := range exp.Assertions {
		if msg := r.runAssertion(body, respDoc, assertion); msg != "" {
			errs = append(errs, msg)
		}
	}

	return errs
}

// validateShape checks the body against a declared shape. Declared
// types are either "|"-delimited unions of primitive type names (with
// "null" and "array" as pseudo-types) or nested shapes, checked
// recursively. Every mismatch is collected.
func validateShape(obj map[string]any, shape map[string]any, path string) []string {
	var errs []string

	for key, declared := range shape {
		currentPath := key
		if path != "" {
			currentPath = path + "." + key
		}

		value, present := obj[key]
		if !present {
			errs = append(errs, fmt.Sprintf("missing property: %s", currentPath))
			continue
		}

		switch decl := declared.(type) {
		case string:
			actual := typeName(value)
			if !contains(strings.Split(decl, "|"), actual) {
				errs = append(errs, fmt.Sprintf("property %s: expected %s, got %s", currentPath, decl, actual))
			}
		case map[string]any:
			nested, ok := value.(map[string]any)
			if !ok {
				errs = append(errs, fmt.Sprintf("property %s: expected object, got %s", currentPath, typeName(value)))
				continue
			}
			errs = append(errs, validateShape(nested, decl, currentPath)...)
		}
	}

	return errs
}

// runAssertion evaluates one custom assertion. Unrecognized assertion
// types are logged and treated as vacuously satisfied.
func (r *Runner) runAssertion(body any, respDoc []byte, assertion Assertion) string {
	target := body
	if assertion.Path != "" {
		target = gjson.GetBytes(respDoc, "body."+assertion.Path).Value()
	}

	switch assertion.Type {
	case "arrayMinLength":
		items, ok := target.([]any)
		if !ok {
			return fmt.Sprintf("arrayMinLength: expected an array, got %s", typeName(target))
		}
		if len(items) < assertion.Value {
			return fmt.Sprintf("arrayMinLength: array length %d < %d", len(items), assertion.Value)
		}
	default:
		r.log.Warn("unknown assertion type", zap.String("type", assertion.Type))
	}
	return ""
}

// typeName reports the runtime type of a decoded JSON value using the
// names shape declarations use.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, int, int64, json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// deepEqual compares after normalizing both sides through JSON, so YAML
// integers match JSON numbers and objects compare structurally.
func deepEqual(expected, actual any) bool {
	return reflect.DeepEqual(normalize(expected), normalize(actual))
}

func normalize(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
