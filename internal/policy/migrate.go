package policy

import (
	"encoding/json"
	"fmt"

	"coc_roster_eval/internal/domain/roster"
)

// migrateWeights parses a stored weights document, upgrading legacy shapes.
// The legacy shape stored the weight fields at the top level with no
// schemaVersion wrapper.
func migrateWeights(raw json.RawMessage) (weightsDocument, bool, error) {
	var probe struct {
		SchemaVersion *int `json:"schemaVersion"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return weightsDocument{}, false, fmt.Errorf("parsing weights document: %w", err)
	}

	if probe.SchemaVersion != nil {
		var doc weightsDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			return weightsDocument{}, false, fmt.Errorf("parsing weights document: %w", err)
		}
		return doc, false, nil
	}

	var doc weightsDocument
	if err := json.Unmarshal(raw, &doc.Weights); err != nil {
		return weightsDocument{}, false, fmt.Errorf("parsing legacy weights document: %w", err)
	}
	doc.SchemaVersion = weightsSchemaVersion
	return doc, true, nil
}

// migrateRequirements parses a stored requirements document, upgrading
// legacy shapes. Two legacy forms exist: a flat map of role name to a bare
// promotion threshold, and an early per-role object form that omitted the
// member role. Bare thresholds become {promotion: n, maintenance: n/2};
// a missing member role gets a zero-maintenance entry.
func migrateRequirements(raw json.RawMessage) (requirementsDocument, bool, error) {
	var probe struct {
		SchemaVersion *int `json:"schemaVersion"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return requirementsDocument{}, false, fmt.Errorf("parsing requirements document: %w", err)
	}

	if probe.SchemaVersion != nil && *probe.SchemaVersion >= requirementsSchemaVersion {
		var doc requirementsDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			return requirementsDocument{}, false, fmt.Errorf("parsing requirements document: %w", err)
		}
		return doc, false, nil
	}

	var roles map[string]json.RawMessage
	if probe.SchemaVersion != nil {
		var wrapped struct {
			Roles map[string]json.RawMessage `json:"roles"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return requirementsDocument{}, false, fmt.Errorf("parsing legacy requirements document: %w", err)
		}
		roles = wrapped.Roles
	} else {
		if err := json.Unmarshal(raw, &roles); err != nil {
			return requirementsDocument{}, false, fmt.Errorf("parsing legacy requirements document: %w", err)
		}
	}

	doc := requirementsDocument{SchemaVersion: requirementsSchemaVersion}
	for name, entry := range roles {
		req, err := migrateRoleEntry(entry)
		if err != nil {
			return requirementsDocument{}, false, fmt.Errorf("parsing legacy requirements role %s: %w", name, err)
		}
		switch name {
		case "member":
			doc.Roles.Member = req
		case "elder", "admin":
			doc.Roles.Elder = req
		case "coLeader", "coleader":
			doc.Roles.CoLeader = req
		case "leader":
			doc.Roles.Leader = req
		}
	}

	return doc, true, nil
}

// migrateRoleEntry accepts either the current {promotion, maintenance}
// object or a legacy bare promotion threshold.
func migrateRoleEntry(raw json.RawMessage) (roster.RoleRequirement, error) {
	var threshold int
	if err := json.Unmarshal(raw, &threshold); err == nil {
		return roster.RoleRequirement{
			Promotion:   threshold,
			Maintenance: threshold / 2,
		}, nil
	}

	var req roster.RoleRequirement
	if err := json.Unmarshal(raw, &req); err != nil {
		return roster.RoleRequirement{}, err
	}
	return req, nil
}
