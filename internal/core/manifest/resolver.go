package manifest

import (
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// Defaults Resolution
// =============================================================================

// DefaultWorkerQueue is the queue the background worker consumes when the
// project does not name one.
const DefaultWorkerQueue = "celery"

// Resolve validates the project set and materializes every resource option,
// applying project-level overrides over server-level defaults. It returns
// one ResolvedProject per declared project, in declaration order.
//
// Merge order for each option: project override > server default > error.
func Resolve(m *Manifest) ([]ResolvedProject, error) {
	if m == nil || len(m.Projects) == 0 {
		return nil, NewConfigError("", "projects", "no projects defined", ErrNoProjects)
	}

	seenNames := make(map[string]bool, len(m.Projects))
	seenDomains := make(map[string]string, len(m.Projects))

	resolved := make([]ResolvedProject, 0, len(m.Projects))
	for _, proj := range m.Projects {
		if strings.TrimSpace(proj.Name) == "" {
			return nil, NewConfigError("", "name", "project has no name", ErrMissingName)
		}
		if seenNames[proj.Name] {
			return nil, NewConfigError(proj.Name, "name", "name declared more than once", ErrDuplicateName)
		}
		seenNames[proj.Name] = true

		if !proj.Tier.Valid() {
			return nil, NewConfigError(proj.Name, "tier",
				fmt.Sprintf("unknown tier %q (expected hot, cold or dormant)", proj.Tier), ErrUnknownTier)
		}

		if !proj.Tier.Dormant() {
			if strings.TrimSpace(proj.Domain) == "" {
				return nil, NewConfigError(proj.Name, "domain", "no domain configured", ErrMissingDomain)
			}
			if other, ok := seenDomains[proj.Domain]; ok {
				return nil, NewConfigError(proj.Name, "domain",
					fmt.Sprintf("domain %s already used by project %s", proj.Domain, other), ErrDuplicateDomain)
			}
			seenDomains[proj.Domain] = proj.Name
		}

		rp, err := resolveProject(proj, m.Defaults)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, rp)
	}

	return resolved, nil
}

// resolveProject materializes one project's options against the defaults.
func resolveProject(proj Project, defaults map[string]string) (ResolvedProject, error) {
	rp := ResolvedProject{
		Name:         proj.Name,
		Domain:       proj.Domain,
		Tier:         proj.Tier,
		Node:         proj.Node,
		Worker:       proj.Worker,
		WorkerQueue:  proj.WorkerQueue,
		BackendPaths: normalizePaths(proj.BackendPaths),
		Tasks:        proj.Tasks,
	}
	if rp.WorkerQueue == "" {
		rp.WorkerQueue = DefaultWorkerQueue
	}

	var err error
	if rp.Workers, err = intOption(proj, defaults, OptionWorkers); err != nil {
		return ResolvedProject{}, err
	}
	if rp.Timeout, err = intOption(proj, defaults, OptionTimeout); err != nil {
		return ResolvedProject{}, err
	}
	if rp.MemoryLimit, err = stringOption(proj, defaults, OptionMemoryLimit); err != nil {
		return ResolvedProject{}, err
	}

	// The frontend port is only required when the frontend is enabled.
	if proj.Node {
		if rp.NodePort, err = intOption(proj, defaults, OptionNodePort); err != nil {
			return ResolvedProject{}, err
		}
	}

	return rp, nil
}

// lookupOption is the explicit two-level lookup: project override first,
// then server default.
func lookupOption(proj Project, defaults map[string]string, name string) (string, bool) {
	if v, ok := proj.Overrides[name]; ok {
		return v, true
	}
	v, ok := defaults[name]
	return v, ok
}

func stringOption(proj Project, defaults map[string]string, name string) (string, error) {
	v, ok := lookupOption(proj, defaults, name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", NewConfigError(proj.Name, name, "no value at project or server level", ErrMissingOption)
	}
	return v, nil
}

func intOption(proj Project, defaults map[string]string, name string) (int, error) {
	raw, err := stringOption(proj, defaults, name)
	if err != nil {
		return 0, err
	}
	n, convErr := strconv.Atoi(strings.TrimSpace(raw))
	if convErr != nil || n <= 0 {
		return 0, NewConfigError(proj.Name, name,
			fmt.Sprintf("expected a positive integer, got %q", raw), ErrInvalidOption)
	}
	return n, nil
}

// normalizePaths trims whitespace and trailing slashes from backend path
// prefixes, dropping empty entries. Declaration order is preserved.
func normalizePaths(paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		for len(p) > 1 && strings.HasSuffix(p, "/") {
			p = strings.TrimSuffix(p, "/")
		}
		if p == "" || p == "/" {
			continue
		}
		out = append(out, p)
	}
	return out
}
