package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/soundmesh/wam/internal/config"
	"github.com/soundmesh/wam/internal/speaker"
	"github.com/soundmesh/wam/internal/ui"
)

var groupName string

func init() {
	groupCmd.AddCommand(groupCreateCmd)
	groupCmd.AddCommand(groupDeleteCmd)
	groupCmd.AddCommand(groupSetCmd)
	groupCmd.AddCommand(groupLeaveCmd)
	groupCmd.AddCommand(groupListCmd)

	groupCreateCmd.Flags().StringVar(&groupName, "name", "", "Group name (defaults to the master's name)")

	rootCmd.AddCommand(groupCmd)
}

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage multiroom speaker groups",
	Long: `Create, change and dissolve multiroom groups.

A group has one master speaker that streams to its members. The master
itself only knows how many speakers it streams to, not which ones, so
wamctl records each group's roster in its config file. Group changes on
a machine without that roster need the full membership spelled out
again.`,
}

// groupCreateCmd forms a new group
var groupCreateCmd = &cobra.Command{
	Use:   "create <master> <member>...",
	Short: "Create a group",
	Long: `Make the first speaker the master of a new group containing the
remaining ones. All speakers must be ungrouped or already belong to this
master.`,
	Example: `  wamctl group create kitchen dining hallway
  wamctl group create 192.168.1.100 192.168.1.101 --name Downstairs`,
	Args: cobra.MinimumNArgs(2),
	RunE: runGroupCreate,
}

func runGroupCreate(cmd *cobra.Command, args []string) error {
	master, members, err := connectAll(cmd.Context(), args[0], args[1:])
	if err != nil {
		return err
	}
	defer closeAll(master, members)

	if err := master.CreateGroup(cmd.Context(), groupName, members); err != nil {
		return err
	}

	name := master.State().Group.Name
	rememberGroup(name, master, members)

	fmt.Printf("%s Group %q created with %d speakers\n", ui.SuccessMarker, name, len(members)+1)
	return nil
}

// groupDeleteCmd dissolves a group
var groupDeleteCmd = &cobra.Command{
	Use:   "delete <group>",
	Short: "Dissolve a group",
	Long: `Dissolve a group recorded in the config file. Every speaker in the
roster is ungrouped, members before the master.`,
	Args: cobra.ExactArgs(1),
	RunE: runGroupDelete,
}

func runGroupDelete(cmd *cobra.Command, args []string) error {
	registry, masterHost, memberHosts, err := lookupRoster(args[0])
	if err != nil {
		return err
	}

	master, members, err := connectAll(cmd.Context(), masterHost, memberHosts)
	if err != nil {
		return err
	}
	defer closeAll(master, members)

	if err := master.DeleteGroup(cmd.Context(), members); err != nil {
		return err
	}

	registry.DeleteGroup(args[0])
	if err := registry.Save(); err != nil {
		fmt.Printf("Warning: cannot save config: %v\n", err)
	}

	fmt.Printf("%s Group %q dissolved\n", ui.SuccessMarker, args[0])
	return nil
}

// groupSetCmd changes a group's membership
var groupSetCmd = &cobra.Command{
	Use:   "set <group> <member>...",
	Short: "Change a group's membership",
	Long: `Move a group recorded in the config file to a new membership. Speakers
leaving the group are ungrouped first, then the new membership is formed
in one step. The master stays the same.`,
	Example: `  # Downstairs now contains exactly dining and hallway
  wamctl group set Downstairs dining hallway`,
	Args: cobra.MinimumNArgs(2),
	RunE: runGroupSet,
}

func runGroupSet(cmd *cobra.Command, args []string) error {
	_, masterHost, currentHosts, err := lookupRoster(args[0])
	if err != nil {
		return err
	}

	master, current, err := connectAll(cmd.Context(), masterHost, currentHosts)
	if err != nil {
		return err
	}
	defer closeAll(master, current)

	byHost := make(map[string]*speaker.Speaker, len(current))
	for _, sp := range current {
		byHost[sp.Host()] = sp
	}

	var desired []*speaker.Speaker
	for _, arg := range args[1:] {
		host, err := resolveHost(arg)
		if err != nil {
			return err
		}
		if sp, ok := byHost[host]; ok {
			desired = append(desired, sp)
			continue
		}
		sp, err := connectSpeaker(cmd.Context(), host)
		if err != nil {
			return err
		}
		defer sp.Close()
		desired = append(desired, sp)
	}

	if err := master.SetGroup(cmd.Context(), args[0], current, desired); err != nil {
		return err
	}
	rememberGroup(args[0], master, desired)

	fmt.Printf("%s Group %q now has %d speakers\n", ui.SuccessMarker, args[0], len(desired)+1)
	return nil
}

// groupLeaveCmd removes one speaker from its group
var groupLeaveCmd = &cobra.Command{
	Use:   "leave <speaker>",
	Short: "Remove a speaker from its group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSpeaker(cmd.Context(), args[0], func(ctx context.Context, sp *speaker.Speaker) error {
			if err := sp.LeaveGroup(ctx); err != nil {
				return err
			}
			fmt.Printf("%s %s left its group\n", ui.SuccessMarker, args[0])
			return nil
		})
	},
}

// groupListCmd prints the rosters from the config file
var groupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known groups",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := config.LoadRegistry()
		if err != nil {
			return err
		}
		if len(registry.Groups) == 0 {
			fmt.Println("No groups recorded. Use 'wamctl group create' to form one.")
			return nil
		}

		names := make([]string, 0, len(registry.Groups))
		for name := range registry.Groups {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			g := registry.Groups[name]
			fmt.Printf("%s\n", name)
			fmt.Printf("  master: %s\n", describeSpeaker(registry, g.Master))
			for _, mac := range g.Members {
				fmt.Printf("  member: %s\n", describeSpeaker(registry, mac))
			}
		}
		return nil
	},
}

func describeSpeaker(registry *config.Registry, mac string) string {
	meta := registry.GetSpeaker(mac)
	if meta == nil {
		return mac
	}
	switch {
	case meta.Nickname != "" && meta.LastIP != "":
		return fmt.Sprintf("%s (%s)", meta.Nickname, meta.LastIP)
	case meta.Nickname != "":
		return meta.Nickname
	case meta.LastIP != "":
		return fmt.Sprintf("%s (%s)", mac, meta.LastIP)
	default:
		return mac
	}
}

// connectAll connects the master and every member. On error everything
// already connected is closed.
func connectAll(ctx context.Context, masterArg string, memberArgs []string) (*speaker.Speaker, []*speaker.Speaker, error) {
	master, err := connectSpeaker(ctx, masterArg)
	if err != nil {
		return nil, nil, err
	}

	var members []*speaker.Speaker
	for _, arg := range memberArgs {
		sp, err := connectSpeaker(ctx, arg)
		if err != nil {
			closeAll(master, members)
			return nil, nil, err
		}
		members = append(members, sp)
	}
	return master, members, nil
}

func closeAll(master *speaker.Speaker, members []*speaker.Speaker) {
	master.Close()
	for _, sp := range members {
		sp.Close()
	}
}

// lookupRoster loads the recorded roster of a group and resolves its
// speakers to their last known addresses.
func lookupRoster(name string) (*config.Registry, string, []string, error) {
	registry, err := config.LoadRegistry()
	if err != nil {
		return nil, "", nil, err
	}

	g, ok := registry.Groups[name]
	if !ok {
		return nil, "", nil, fmt.Errorf("no group %q in the config, see 'wamctl group list'", name)
	}

	masterHost, err := hostForMAC(registry, g.Master)
	if err != nil {
		return nil, "", nil, err
	}
	var memberHosts []string
	for _, mac := range g.Members {
		host, err := hostForMAC(registry, mac)
		if err != nil {
			return nil, "", nil, err
		}
		memberHosts = append(memberHosts, host)
	}
	return registry, masterHost, memberHosts, nil
}

func hostForMAC(registry *config.Registry, mac string) (string, error) {
	if meta := registry.GetSpeaker(mac); meta != nil && meta.LastIP != "" {
		return meta.LastIP, nil
	}
	return "", fmt.Errorf("no known address for speaker %s, run 'wamctl scan' first", mac)
}

// rememberGroup records a group's roster so later changes know the
// membership. Failures only cost the shortcut, not the group.
func rememberGroup(name string, master *speaker.Speaker, members []*speaker.Speaker) {
	registry, err := config.LoadRegistry()
	if err != nil {
		fmt.Printf("Warning: cannot update config: %v\n", err)
		return
	}

	masterMAC := master.State().MAC
	if masterMAC == "" {
		return
	}
	registry.UpdateSpeakerLastSeen(masterMAC, master.Host())

	var memberMACs []string
	for _, sp := range members {
		mac := sp.State().MAC
		if mac == "" {
			continue
		}
		registry.UpdateSpeakerLastSeen(mac, sp.Host())
		memberMACs = append(memberMACs, mac)
	}

	registry.SetGroup(name, masterMAC, memberMACs)
	if err := registry.Save(); err != nil {
		fmt.Printf("Warning: cannot save config: %v\n", err)
	}
}
