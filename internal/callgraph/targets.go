package callgraph

import "github.com/graphscout-dev/graphscout/internal/scan"

// FunctionTarget describes the flat "function definition" entity kind used
// for node discovery. The map normalizes the reported fields to the node
// field names while keeping the span keys the engine uses for recursion
// bounds and blacking.
func FunctionTarget() *scan.Target {
	return &scan.Target{
		ID:          "function",
		Description: "function definition",
		Schema: scan.Schema{
			Type: "object",
			Properties: map[string]scan.Property{
				"file":          {Type: "string", Description: "The file where the function is defined."},
				"function_name": {Type: "string", Description: "Name of the function defined."},
				"start_line":    {Type: "integer", Description: "Starting line number of the function definition."},
				"end_line":      {Type: "integer", Description: "Ending line number of the function definition."},
			},
			Required: []string{"function_name", "start_line", "end_line"},
		},
		MapFields: func(fields map[string]any) map[string]any {
			mapped := map[string]any{
				"name":       fields["function_name"],
				"start_line": fields["start_line"],
				"end_line":   fields["end_line"],
			}
			if file, ok := fields["file"]; ok {
				mapped["file"] = file
			}
			return mapped
		},
	}
}

// ClassTargets describes the nested "class containing functions" target set
// used by the generic scan command.
func ClassTargets() []*scan.Target {
	return []*scan.Target{
		{
			ID:          "class",
			Description: "class definitions",
			Schema: scan.Schema{
				Type: "object",
				Properties: map[string]scan.Property{
					"class_name": {Type: "string", Description: "Name of the class."},
					"start_line": {Type: "integer", Description: "Starting line number of the class definition."},
					"end_line":   {Type: "integer", Description: "Ending line number of the class definition."},
				},
				Required: []string{"class_name", "start_line", "end_line"},
			},
			Children: []*scan.Target{FunctionTarget()},
		},
		FunctionTarget(),
	}
}
