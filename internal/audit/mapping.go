package audit

import (
	"net/http"
	"strings"
)

// ActionResource holds action and resource derived from an HTTP route.
type ActionResource struct {
	Action   string
	Resource string
}

// stateSegments are trailing route segments that name the field a PATCH changes.
var stateSegments = map[string]bool{"stage": true, "status": true}

// ParseRoute returns action and resource for a mutating request given its method and
// router pattern (e.g. DELETE /customers/{id}/contacts/{contactID} -> delete contact).
// The resource is the last literal segment, singularized. Action is create, update or
// delete by method; "/init" maps to init and trailing stage/status segments to update_stage/update_status.
func ParseRoute(method, pattern string) ActionResource {
	var literals []string
	for _, seg := range strings.Split(strings.Trim(pattern, "/"), "/") {
		if seg == "" || strings.HasPrefix(seg, "{") {
			continue
		}
		literals = append(literals, seg)
	}
	if len(literals) == 0 {
		return ActionResource{Action: methodToAction(method), Resource: "unknown"}
	}
	last := literals[len(literals)-1]
	switch {
	case stateSegments[last] && len(literals) > 1:
		return ActionResource{Action: "update_" + last, Resource: singular(literals[len(literals)-2])}
	case last == "init" && len(literals) > 1:
		return ActionResource{Action: "init", Resource: singular(literals[len(literals)-2])}
	}
	return ActionResource{Action: methodToAction(method), Resource: singular(last)}
}

func methodToAction(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return strings.ToLower(method)
	}
}

// singular turns a plural route segment into a resource name: customers -> customer, entries -> entry.
func singular(seg string) string {
	seg = strings.ReplaceAll(seg, "-", "_")
	switch {
	case strings.HasSuffix(seg, "ies"):
		return strings.TrimSuffix(seg, "ies") + "y"
	case strings.HasSuffix(seg, "ss"):
		return seg
	case strings.HasSuffix(seg, "s"):
		return strings.TrimSuffix(seg, "s")
	default:
		return seg
	}
}
