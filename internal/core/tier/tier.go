// Package tier maps a project's tier and capability flags to the set of
// service states it requires. This is part of the Functional Core - all
// functions are pure with no I/O.
package tier

import "github.com/onurmatik/StageOps/internal/core/manifest"

// =============================================================================
// Service Kinds and Activation Modes
// =============================================================================

// ServiceKind identifies one of a project's managed services.
type ServiceKind string

const (
	// ServiceApp is the primary application server.
	ServiceApp ServiceKind = "app"

	// ServiceWorker is the background task worker.
	ServiceWorker ServiceKind = "worker"

	// ServiceFrontend is the frontend server.
	ServiceFrontend ServiceKind = "frontend"
)

// ActivationMode is how a service is started.
type ActivationMode string

const (
	// ActivationAlwaysOn enables and starts the service immediately.
	ActivationAlwaysOn ActivationMode = "always-on"

	// ActivationSocket leaves the service stopped; the service manager owns
	// the listening socket and starts the service on first connection.
	ActivationSocket ActivationMode = "socket-activated"
)

// =============================================================================
// Tier Decision
// =============================================================================

// Decision is the set of services a project requires, keyed by kind.
// A kind absent from the map is not deployed. Dormant projects always get
// the empty decision.
type Decision map[ServiceKind]ActivationMode

// Empty reports whether no services are required.
func (d Decision) Empty() bool {
	return len(d) == 0
}

// Has reports whether the given service kind is required.
func (d Decision) Has(kind ServiceKind) bool {
	_, ok := d[kind]
	return ok
}

// SocketActivated reports whether the primary service is socket-activated.
func (d Decision) SocketActivated() bool {
	return d[ServiceApp] == ActivationSocket
}

// Decide maps a resolved project to its tier decision.
//
// The tier dominates: flags only add optional subsystems, never escalate the
// tier. Dormant always yields the empty decision regardless of flags.
//
//	hot     -> app always-on
//	cold    -> app socket-activated
//	dormant -> nothing
func Decide(p manifest.ResolvedProject) Decision {
	if p.Tier.Dormant() {
		return Decision{}
	}

	d := Decision{}
	switch p.Tier {
	case manifest.TierHot:
		d[ServiceApp] = ActivationAlwaysOn
	case manifest.TierCold:
		d[ServiceApp] = ActivationSocket
	}

	if p.Worker {
		d[ServiceWorker] = ActivationAlwaysOn
	}
	if p.Node {
		d[ServiceFrontend] = ActivationAlwaysOn
	}

	return d
}

// =============================================================================
// Unit Naming
// =============================================================================

// UnitName returns the systemd unit name for a project service.
func UnitName(kind ServiceKind, project string) string {
	switch kind {
	case ServiceApp:
		return "app@" + project + ".service"
	case ServiceWorker:
		return "celery@" + project + ".service"
	case ServiceFrontend:
		return "node@" + project + ".service"
	}
	return ""
}

// SocketUnitName returns the systemd socket unit name for a project.
func SocketUnitName(project string) string {
	return "app@" + project + ".socket"
}

// AllUnitNames returns every unit name a project could own, used when
// reconciling or tearing down a project's units.
func AllUnitNames(project string) []string {
	return []string{
		UnitName(ServiceApp, project),
		SocketUnitName(project),
		UnitName(ServiceWorker, project),
		UnitName(ServiceFrontend, project),
	}
}

// EnabledUnitNames returns the unit names that must be enabled for a
// decision, in deterministic order. For a socket-activated primary service
// the socket unit is enabled instead of the service unit.
func (d Decision) EnabledUnitNames(project string) []string {
	if d.Empty() {
		return nil
	}

	var units []string
	if d.Has(ServiceApp) {
		if d.SocketActivated() {
			units = append(units, SocketUnitName(project))
		} else {
			units = append(units, UnitName(ServiceApp, project))
		}
	}
	if d.Has(ServiceWorker) {
		units = append(units, UnitName(ServiceWorker, project))
	}
	if d.Has(ServiceFrontend) {
		units = append(units, UnitName(ServiceFrontend, project))
	}
	return units
}
