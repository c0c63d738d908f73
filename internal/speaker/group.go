package speaker

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/soundmesh/wam/internal/event"
	"github.com/soundmesh/wam/internal/logging"
	"github.com/soundmesh/wam/internal/protocol"
)

// GroupPlan is the set of commands needed to move a group from its
// current membership to a desired one. Plans are computed by
// PlanGroupChange and executed by ApplyGroupPlan.
type GroupPlan struct {
	// Remove lists members that leave the group.
	Remove []*Speaker

	// Add lists members of the resulting group (current members that stay
	// plus new ones). Empty when the group dissolves.
	Add []*Speaker

	// Dissolve is true when the desired membership is empty: the master
	// ungroups too and no new group is formed.
	Dissolve bool
}

// Empty reports whether the plan changes nothing.
func (p GroupPlan) Empty() bool {
	return len(p.Remove) == 0 && len(p.Add) == 0 && !p.Dissolve
}

// PlanGroupChange diffs the current group members against the desired
// ones. Speakers are compared by host address. The master itself is
// implied and never appears in either list.
//
// Growing a group resends the full membership to the master, so Add
// carries every desired member, not just the new ones; the speakers
// already in the group handle the repeat without interruption.
func PlanGroupChange(current, desired []*Speaker) GroupPlan {
	inDesired := make(map[string]bool, len(desired))
	for _, sp := range desired {
		inDesired[sp.Host()] = true
	}

	var plan GroupPlan
	for _, sp := range current {
		if !inDesired[sp.Host()] {
			plan.Remove = append(plan.Remove, sp)
		}
	}
	if len(desired) == 0 {
		plan.Dissolve = len(current) > 0
		return plan
	}

	// Unchanged membership needs no commands at all.
	if len(plan.Remove) == 0 && len(desired) == len(current) {
		return GroupPlan{}
	}

	plan.Add = append(plan.Add, desired...)
	return plan
}

// CreateGroup makes this speaker the master of a group containing the
// given members. Members already in another group are rejected. An empty
// name defaults to the master's name with a "_group" suffix.
func (s *Speaker) CreateGroup(ctx context.Context, name string, members []*Speaker) error {
	if len(members) == 0 {
		return NewInvalidArgumentError("a group needs at least one member")
	}

	snap := s.State()
	if snap.Group.Role == event.GroupRoleMember {
		return NewGroupError("this speaker is a member of another group", nil)
	}

	if name == "" {
		name = snap.Name + "_group"
	}
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 64 {
		return NewInvalidArgumentError("group name must be 1-64 characters")
	}

	// The grouping commands carry member MAC addresses, so identity must
	// be known for everyone involved.
	if err := s.ensureIdentity(ctx); err != nil {
		return NewGroupError("failed to read master identity", err)
	}

	var subs []protocol.GroupMember
	for _, m := range members {
		if m.Host() == s.Host() {
			return NewInvalidArgumentError("master cannot be its own group member")
		}
		if err := m.ensureIdentity(ctx); err != nil {
			return NewGroupError(fmt.Sprintf("failed to read identity of member %s", m.Host()), err)
		}
		mg := m.State().Group
		if mg.Grouped() && mg.MainIP != s.Host() {
			return NewGroupError(fmt.Sprintf("member %s belongs to another group", m.Host()), nil)
		}
		subs = append(subs, protocol.GroupMember{IP: m.Host(), MAC: m.State().MAC})
	}

	master := s.State()
	total := len(subs) + 1

	logging.Info("Forming speaker group",
		zap.String("master", s.Host()),
		zap.String("group", name),
		zap.Int("speakers", total),
	)

	if _, err := s.request(ctx, protocol.SetMultispkGroupMain(name, total, master.MAC, master.Name, subs)); err != nil {
		return NewGroupError("master refused to form the group", err)
	}

	for _, m := range members {
		if _, err := m.request(ctx, protocol.SetMultispkGroupSub(name, total, s.Host(), master.MAC)); err != nil {
			return NewGroupError(fmt.Sprintf("member %s failed to join", m.Host()), err)
		}
	}
	return nil
}

// DeleteGroup dissolves the group this speaker masters. All current
// members must be passed: the master does not know who they are, only how
// many there are.
func (s *Speaker) DeleteGroup(ctx context.Context, members []*Speaker) error {
	if s.State().Group.Role != event.GroupRoleMaster {
		return NewGroupError("this speaker is not a group master", nil)
	}

	// Members leave first so the master never streams to half a group.
	for _, m := range members {
		if _, err := m.request(ctx, protocol.SetUngroup()); err != nil {
			return NewGroupError(fmt.Sprintf("member %s failed to leave", m.Host()), err)
		}
	}
	if _, err := s.request(ctx, protocol.SetUngroup()); err != nil {
		return NewGroupError("master failed to ungroup", err)
	}
	return nil
}

// LeaveGroup removes this speaker from the group it is a member of.
func (s *Speaker) LeaveGroup(ctx context.Context) error {
	if s.State().Group.Role != event.GroupRoleMember {
		return NewGroupError("this speaker is not a group member", nil)
	}
	if _, err := s.request(ctx, protocol.SetUngroup()); err != nil {
		return NewGroupError("failed to leave group", err)
	}
	return nil
}

// SetGroup moves the group mastered by this speaker from its current
// membership to the desired one: leaving members are ungrouped first,
// then the new membership is formed in one step. An empty desired list
// dissolves the group.
func (s *Speaker) SetGroup(ctx context.Context, name string, current, desired []*Speaker) error {
	plan := PlanGroupChange(current, desired)
	return s.ApplyGroupPlan(ctx, name, plan)
}

// ApplyGroupPlan executes a plan computed by PlanGroupChange.
func (s *Speaker) ApplyGroupPlan(ctx context.Context, name string, plan GroupPlan) error {
	if plan.Empty() {
		return nil
	}

	for _, m := range plan.Remove {
		if _, err := m.request(ctx, protocol.SetUngroup()); err != nil {
			return NewGroupError(fmt.Sprintf("member %s failed to leave", m.Host()), err)
		}
	}

	if plan.Dissolve {
		if _, err := s.request(ctx, protocol.SetUngroup()); err != nil {
			return NewGroupError("master failed to ungroup", err)
		}
		return nil
	}

	if len(plan.Add) > 0 {
		return s.CreateGroup(ctx, name, plan.Add)
	}
	return nil
}

// ensureIdentity reads the speaker's MainInfo block if the MAC address is
// not known yet.
func (s *Speaker) ensureIdentity(ctx context.Context) error {
	if s.State().MAC != "" {
		return nil
	}
	_, err := s.request(ctx, protocol.GetMainInfo())
	return err
}
