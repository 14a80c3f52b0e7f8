package agent

import (
	"context"
	"fmt"
	"log/slog"
)

// Group is one of the caller's existing upstream chat groups.
type Group struct {
	// ID is the upstream group identifier.
	ID string

	// Members are the agents participating in the group.
	Members []GroupMember
}

// GroupMember is a single agent inside a chat group.
type GroupMember struct {
	// Nickname is the agent's display name within the group.
	Nickname string

	// AccountNo is the agent's addressable upstream identity.
	AccountNo string
}

// CatalogEntry is one agent from the upstream's global catalog.
type CatalogEntry struct {
	ID          string
	Label       string
	AccountNo   string
	Description string
}

// Binding is the result of resolving an agent name: the group to talk in
// and the agent identity to address messages at.
type Binding struct {
	GroupID   string
	AccountNo string
}

// Directory is the upstream surface the resolver needs: the caller's
// existing groups, the global agent catalog, and group provisioning.
// Bind records the resolved binding on the client so subsequent sends in
// the same logical session address the right group.
type Directory interface {
	ListGroups(ctx context.Context) ([]Group, error)
	ListAgents(ctx context.Context) ([]CatalogEntry, error)
	CreateGroup(ctx context.Context, accountNo string) (Binding, error)
	Bind(binding Binding)
}

// NoMatchError indicates that no existing group member and no catalog agent
// matched the requested name at the configured threshold.
type NoMatchError struct {
	// Name is the requested agent name that failed to resolve.
	Name string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no agent matching %q", e.Name)
}

// Resolver maps a requested agent name onto an upstream group binding.
type Resolver struct {
	directory Directory
	threshold float64
	logger    *slog.Logger
}

// NewResolver creates a resolver over the given directory. A threshold of
// zero selects DefaultSimilarityThreshold.
func NewResolver(directory Directory, threshold float64, logger *slog.Logger) *Resolver {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		directory: directory,
		threshold: threshold,
		logger:    logger.With("component", "agent-resolver"),
	}
}

// Resolve finds or provisions a group for the requested agent name. Three
// tiers are tried in order, first success wins:
//
//  1. Exact nickname match over existing group members.
//  2. Best fuzzy match over existing group members, accepted at or above
//     the similarity threshold.
//  3. Best fuzzy match over the global agent catalog; on acceptance a new
//     group is provisioned for that agent.
//
// On success the binding is recorded on the directory before returning.
// If no tier produces a candidate the error is a *NoMatchError; the caller
// must surface it rather than fall back to an arbitrary agent.
func (r *Resolver) Resolve(ctx context.Context, name string) (Binding, error) {
	groups, err := r.directory.ListGroups(ctx)
	if err != nil {
		return Binding{}, fmt.Errorf("failed to list chat groups: %w", err)
	}

	// Tier 1: exact nickname match.
	for _, group := range groups {
		for _, member := range group.Members {
			if member.Nickname == name {
				binding := Binding{GroupID: group.ID, AccountNo: member.AccountNo}
				r.directory.Bind(binding)
				r.logger.DebugContext(ctx, "Resolved agent by exact match",
					"agent", name,
					"group_id", binding.GroupID,
				)
				return binding, nil
			}
		}
	}

	// Tier 2: best fuzzy match across existing group members.
	var (
		bestScore   float64
		bestBinding Binding
		bestName    string
	)
	for _, group := range groups {
		for _, member := range group.Members {
			score := Similarity(name, member.Nickname)
			if score > bestScore {
				bestScore = score
				bestBinding = Binding{GroupID: group.ID, AccountNo: member.AccountNo}
				bestName = member.Nickname
			}
		}
	}
	if bestScore >= r.threshold {
		r.directory.Bind(bestBinding)
		r.logger.DebugContext(ctx, "Resolved agent from existing group",
			"agent", name,
			"matched", bestName,
			"score", bestScore,
			"group_id", bestBinding.GroupID,
		)
		return bestBinding, nil
	}

	// Tier 3: fuzzy match over the global catalog, provisioning a group.
	catalog, err := r.directory.ListAgents(ctx)
	if err != nil {
		return Binding{}, fmt.Errorf("failed to list agent catalog: %w", err)
	}

	var (
		bestEntry      *CatalogEntry
		bestEntryScore float64
	)
	for i, entry := range catalog {
		score := Similarity(name, entry.Label)
		if score > bestEntryScore {
			bestEntryScore = score
			bestEntry = &catalog[i]
		}
	}
	if bestEntry == nil || bestEntryScore < r.threshold {
		return Binding{}, &NoMatchError{Name: name}
	}

	binding, err := r.directory.CreateGroup(ctx, bestEntry.AccountNo)
	if err != nil {
		return Binding{}, fmt.Errorf("failed to create chat group for %q: %w", bestEntry.Label, err)
	}
	if binding.AccountNo == "" {
		// Provisioning responses do not always echo member details.
		binding.AccountNo = bestEntry.AccountNo
	}

	r.directory.Bind(binding)
	r.logger.InfoContext(ctx, "Provisioned new chat group",
		"agent", name,
		"matched", bestEntry.Label,
		"score", bestEntryScore,
		"group_id", binding.GroupID,
	)
	return binding, nil
}
