package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Fepozopo/rasterkit/pkg/stdimg"
)

// ParamType is a small enum for parameter types used in metadata.
type ParamType string

const (
	ParamTypeInt     ParamType = "int"
	ParamTypeBool    ParamType = "bool"
	ParamTypeString  ParamType = "string"
	ParamTypePercent ParamType = "percent"
)

// ValidationRule is a machine-friendly representation of the constraints
// a client can check before invoking an operation.
type ValidationRule struct {
	Type     ParamType `json:"type"`
	Required bool      `json:"required"`
	Min      *int      `json:"min,omitempty"`
	Max      *int      `json:"max,omitempty"`
	Example  string    `json:"example,omitempty"`
	Hint     string    `json:"hint,omitempty"`
}

// parseBoolLikeToString accepts common truthy/falsy forms and returns "true"/"false" string.
func parseBoolLikeToString(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "t", "true", "y", "yes", "on":
		return "true", nil
	case "0", "f", "false", "n", "no", "off":
		return "false", nil
	default:
		return "", fmt.Errorf("invalid boolean: %q", s)
	}
}

// parsePercentValue accepts "150%" or a bare integer and returns the number.
func parsePercentValue(s string) (string, error) {
	raw := strings.TrimSuffix(strings.TrimSpace(s), "%")
	if _, err := strconv.Atoi(raw); err != nil {
		return "", fmt.Errorf("invalid percent value: %q", s)
	}
	return raw, nil
}

func intRange(lo, hi int) (*int, *int) { return &lo, &hi }

// argRange returns the numeric bounds the engine enforces for an argument.
func argRange(arg string) (*int, *int) {
	switch arg {
	case "k", "block":
		return intRange(stdimg.MinKernelSize, stdimg.MaxKernelSize)
	case "offset":
		return intRange(-stdimg.MaxAdaptiveOffset, stdimg.MaxAdaptiveOffset)
	case "low", "high", "threshold":
		return intRange(0, 255)
	case "percent":
		return intRange(stdimg.MinResizePercent, stdimg.MaxResizePercent)
	}
	return nil, nil
}

// Tooltip renders the help text for an operation.
func Tooltip(op stdimg.OperationSpec) string {
	var sb strings.Builder
	sb.WriteString(op.Usage)
	sb.WriteString("\n  ")
	if op.Description != "" {
		sb.WriteString(op.Description)
	} else {
		sb.WriteString("No description")
	}
	if len(op.Aliases) > 0 {
		sb.WriteString("\n  aliases: " + strings.Join(op.Aliases, ", "))
	}
	if op.ROIAware {
		sb.WriteString("\n  honours the ROI")
	}
	for _, a := range op.Args {
		req := "optional"
		if a.Required {
			req = "required"
		}
		sb.WriteString(fmt.Sprintf("\n  - %s (%s, %s)", a.Name, a.Type, req))
		if a.Description != "" {
			sb.WriteString(": " + a.Description)
		}
		if a.Default != "" {
			sb.WriteString(" (default: " + a.Default + ")")
		}
	}
	return sb.String()
}

// ValidationRules derives per-argument rules for op.
func ValidationRules(op stdimg.OperationSpec) map[string]ValidationRule {
	rules := make(map[string]ValidationRule, len(op.Args))
	for _, a := range op.Args {
		t := ParamTypeString
		switch {
		case a.Name == "percent":
			t = ParamTypePercent
		case a.Type == "int":
			t = ParamTypeInt
		case a.Type == "bool":
			t = ParamTypeBool
		}
		lo, hi := argRange(a.Name)
		rules[a.Name] = ValidationRule{Type: t, Required: a.Required, Min: lo, Max: hi, Hint: a.Description, Example: a.Default}
	}
	return rules
}

// NormalizeArgs checks args against the operation's rules and returns them
// in canonical textual form. Missing optional arguments are dropped from the
// tail so the engine applies its defaults.
func NormalizeArgs(name string, args []string) ([]string, error) {
	op, ok := stdimg.LookupOperation(name)
	if !ok {
		return nil, fmt.Errorf("unknown operation: %s", name)
	}
	if len(args) > len(op.Args) {
		return nil, fmt.Errorf("%s takes at most %d argument(s), got %d", op.Name, len(op.Args), len(args))
	}
	rules := ValidationRules(op)
	out := make([]string, 0, len(op.Args))
	for i, a := range op.Args {
		raw := ""
		if i < len(args) {
			raw = strings.TrimSpace(args[i])
		}
		if raw == "" {
			if a.Required {
				return nil, fmt.Errorf("missing required parameter: %s", a.Name)
			}
			break
		}
		vr := rules[a.Name]
		switch vr.Type {
		case ParamTypeInt, ParamTypePercent:
			if vr.Type == ParamTypePercent {
				n, err := parsePercentValue(raw)
				if err != nil {
					return nil, fmt.Errorf("parameter %s: %w", a.Name, err)
				}
				raw = n
			}
			v, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("parameter %s: expected integer, got %q", a.Name, raw)
			}
			if vr.Min != nil && v < *vr.Min {
				return nil, fmt.Errorf("parameter %s: %d < min %d", a.Name, v, *vr.Min)
			}
			if vr.Max != nil && v > *vr.Max {
				return nil, fmt.Errorf("parameter %s: %d > max %d", a.Name, v, *vr.Max)
			}
			out = append(out, strconv.Itoa(v))
		case ParamTypeBool:
			bs, err := parseBoolLikeToString(raw)
			if err != nil {
				return nil, fmt.Errorf("parameter %s: %w", a.Name, err)
			}
			out = append(out, bs)
		default:
			out = append(out, raw)
		}
	}
	return out, nil
}
