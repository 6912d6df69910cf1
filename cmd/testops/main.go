package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"testops/internal/audit"
	"testops/internal/config"
	"testops/internal/domain"
	"testops/internal/report"
	"testops/internal/seed"
	"testops/internal/server"
	"testops/internal/storage"
	"testops/internal/store"
	"testops/internal/view"
)

var rootCmd = &cobra.Command{
	Use:   "testops",
	Short: "TestOps CLI",
	Long: `TestOps tracks test efforts across teams, sprints and shared environments.
- Workspace: your .testops directory holding the collections database.
- Test efforts: the central work items, grouped by sprint and PI.
- Environments: shared QA/UAT/staging systems with health, connections
  and exclusive time-boxed reservations.
- Audit log: newest-first record of every change this session.`,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("TESTOPS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("actor-id", "local-user", "actor identifier for audit attribution")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("actor-id", rootCmd.PersistentFlags().Lookup("actor-id"))
}

func registerCommands() {
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(teamCmd())
	rootCmd.AddCommand(memberCmd())
	rootCmd.AddCommand(piCmd())
	rootCmd.AddCommand(sprintCmd())
	rootCmd.AddCommand(testTypeCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(envCmd())
	rootCmd.AddCommand(effortCmd())
	rootCmd.AddCommand(auditCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(serveCmd())
}

func configCmd() *cobra.Command {
	cfg := &cobra.Command{Use: "config", Short: "Manage workspace configuration"}
	cfg.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a default testops.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(viper.GetString("workspace"))
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0o644); err != nil {
				return err
			}
			fmt.Println("wrote", path)
			return nil
		},
	})
	cfg.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(viper.GetString("workspace"))
			if err != nil {
				return err
			}
			return printJSON(c)
		},
	})
	return cfg
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Workspace overview",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd.Context(), func(ctx context.Context, s *store.Stores) error {
				counts := s.Efforts.CountByStatus(ctx, store.EffortFilters{})
				out := map[string]any{
					"teams":            len(s.Teams.List(ctx)),
					"members":          len(s.Members.List(ctx, store.MemberFilters{})),
					"environments":     len(s.Environments.List(ctx)),
					"efforts":          counts,
					"storage_degraded": s.Adapter.Degraded(),
				}
				if pi, ok := s.PIs.Current(ctx, s.Now()); ok {
					out["current_pi"] = pi.Name
				}
				return printJSON(out)
			})
		},
	}
}

func teamCmd() *cobra.Command {
	team := &cobra.Command{Use: "team", Short: "Manage teams"}
	team.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List teams",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd.Context(), func(ctx context.Context, s *store.Stores) error {
				teams := s.Teams.List(ctx)
				if viper.GetBool("json") {
					return printJSON(teams)
				}
				tw := newTable()
				tw.AppendHeader(table.Row{"ID", "Name", "Archived"})
				for _, t := range teams {
					tw.AppendRow(table.Row{t.ID, t.Name, t.Archived})
				}
				fmt.Println(tw.Render())
				return nil
			})
		},
	})
	var name, desc string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create team",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd.Context(), func(ctx context.Context, s *store.Stores) error {
				t, err := s.Teams.Create(ctx, viper.GetString("actor-id"), store.TeamCreate{Name: name, Description: desc})
				if err != nil {
					return err
				}
				return printJSON(t)
			})
		},
	}
	create.Flags().StringVar(&name, "name", "", "team name")
	create.Flags().StringVar(&desc, "description", "", "team description")
	team.AddCommand(create)
	team.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd.Context(), func(ctx context.Context, s *store.Stores) error {
				return s.Teams.Delete(ctx, viper.GetString("actor-id"), args[0])
			})
		},
	})
	return team
}

func memberCmd() *cobra.Command {
	member := &cobra.Command{Use: "member", Short: "Manage members"}
	var teamID string
	list := &cobra.Command{
		Use:   "list",
		Short: "List members",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd.Context(), func(ctx context.Context, s *store.Stores) error {
				f := store.MemberFilters{}
				if teamID != "" {
					f.TeamID = &teamID
				}
				members := s.Members.List(ctx, f)
				if viper.GetBool("json") {
					return printJSON(members)
				}
				tw := newTable()
				tw.AppendHeader(table.Row{"ID", "Name", "Email", "Roles", "Active"})
				for _, m := range members {
					tw.AppendRow(table.Row{m.ID, m.Name, m.Email, joinRoles(m.Roles), m.Active})
				}
				fmt.Println(tw.Render())
				return nil
			})
		},
	}
	list.Flags().StringVar(&teamID, "team", "", "filter by team id")
	member.AddCommand(list)
	return member
}

func piCmd() *cobra.Command {
	pi := &cobra.Command{Use: "pi", Short: "Manage program increments"}
	pi.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List program increments",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd.Context(), func(ctx context.Context, s *store.Stores) error {
				pis := s.PIs.List(ctx)
				if viper.GetBool("json") {
					return printJSON(pis)
				}
				current, hasCurrent := s.PIs.Current(ctx, s.Now())
				tw := newTable()
				tw.AppendHeader(table.Row{"ID", "Name", "Start", "End", "Current"})
				for _, p := range pis {
					tw.AppendRow(table.Row{p.ID, p.Name,
						report.FormatDate(p.StartDate), report.FormatDate(p.EndDate),
						hasCurrent && p.ID == current.ID})
				}
				fmt.Println(tw.Render())
				return nil
			})
		},
	})
	return pi
}

func sprintCmd() *cobra.Command {
	sprint := &cobra.Command{Use: "sprint", Short: "Manage sprints"}
	var piID string
	list := &cobra.Command{
		Use:   "list",
		Short: "List sprints",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd.Context(), func(ctx context.Context, s *store.Stores) error {
				f := store.SprintFilters{}
				if piID != "" {
					f.PIID = &piID
				}
				sprints := s.Sprints.List(ctx, f)
				if viper.GetBool("json") {
					return printJSON(sprints)
				}
				tw := newTable()
				tw.AppendHeader(table.Row{"ID", "Name", "PI", "Start", "End"})
				for _, sp := range sprints {
					tw.AppendRow(table.Row{sp.ID, sp.Name, s.PIs.NameOf(sp.PIID),
						report.FormatDate(sp.StartDate), report.FormatDate(sp.EndDate)})
				}
				fmt.Println(tw.Render())
				return nil
			})
		},
	}
	list.Flags().StringVar(&piID, "pi", "", "filter by program increment id")
	sprint.AddCommand(list)
	return sprint
}

func testTypeCmd() *cobra.Command {
	tt := &cobra.Command{Use: "testtype", Short: "Manage test type definitions"}
	var teamID string
	list := &cobra.Command{
		Use:   "list",
		Short: "List test type definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd.Context(), func(ctx context.Context, s *store.Stores) error {
				var types []domain.TestTypeDefinition
				if teamID != "" {
					types = s.TestTypes.ByTeam(ctx, teamID)
				} else {
					types = s.TestTypes.List(ctx)
				}
				if viper.GetBool("json") {
					return printJSON(types)
				}
				tw := newTable()
				tw.AppendHeader(table.Row{"ID", "Name", "Owner Team", "Active"})
				for _, d := range types {
					tw.AppendRow(table.Row{d.ID, d.Name, s.Teams.NameOf(d.OwnerTeamID), d.Active})
				}
				fmt.Println(tw.Render())
				return nil
			})
		},
	}
	list.Flags().StringVar(&teamID, "team", "", "filter by team id")
	tt.AddCommand(list)
	return tt
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Reset the workspace collections to the demo dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			cfg, err := config.Load(workspace)
			if err != nil {
				return err
			}
			st, closeStore, err := openStore(workspace, cfg)
			if err != nil {
				return err
			}
			defer closeStore()
			adapter := storage.NewAdapter(st, nil)
			data := seed.Dataset()
			storage.Save(adapter, store.KeyTeams, data.Teams)
			storage.Save(adapter, store.KeyMembers, data.Members)
			storage.Save(adapter, store.KeyPIs, data.PIs)
			storage.Save(adapter, store.KeySprints, data.Sprints)
			storage.Save(adapter, store.KeyTestTypes, data.TestTypes)
			storage.Save(adapter, store.KeyEnvironments, data.Environments)
			storage.Save(adapter, store.KeyConnections, data.Connections)
			storage.Save(adapter, store.KeyReservations, data.Reservations)
			storage.Save(adapter, store.KeyEfforts, data.Efforts)
			if adapter.Degraded() {
				return adapter.LastError()
			}
			fmt.Printf("seeded workspace %s: %d teams, %d members, %d efforts\n",
				cfg.Workspace.ID, len(data.Teams), len(data.Members), len(data.Efforts))
			return nil
		},
	}
}

func envCmd() *cobra.Command {
	env := &cobra.Command{Use: "env", Short: "Manage environments and reservations"}
	env.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List environments",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd.Context(), func(ctx context.Context, s *store.Stores) error {
				envs := s.Environments.List(ctx)
				if viper.GetBool("json") {
					return printJSON(envs)
				}
				tw := newTable()
				tw.AppendHeader(table.Row{"ID", "Name", "Type", "Location", "Health", "Active"})
				for _, e := range envs {
					tw.AppendRow(table.Row{e.ID, e.Name, e.Type, e.Location, e.Health, e.Active})
				}
				fmt.Println(tw.Render())
				return nil
			})
		},
	})
	var envID string
	reservations := &cobra.Command{
		Use:   "reservations",
		Short: "List reservations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd.Context(), func(ctx context.Context, s *store.Stores) error {
				res := s.Environments.Reservations(ctx, envID)
				if viper.GetBool("json") {
					return printJSON(res)
				}
				tw := newTable()
				tw.AppendHeader(table.Row{"ID", "Environment", "Member", "Start", "End"})
				for _, r := range res {
					tw.AppendRow(table.Row{r.ID, s.Environments.NameOf(r.EnvironmentID),
						s.Members.NameOf(r.MemberID), report.FormatDate(r.StartDate), report.FormatDate(r.EndDate)})
				}
				fmt.Println(tw.Render())
				return nil
			})
		},
	}
	reservations.Flags().StringVar(&envID, "env", "", "filter by environment id")
	env.AddCommand(reservations)

	var memberID, effortID, notes, startStr, endStr string
	reserve := &cobra.Command{
		Use:   "reserve <environment-id>",
		Short: "Reserve an environment for [start, end)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseDate(startStr)
			if err != nil {
				return fmt.Errorf("--start: %w", err)
			}
			end, err := parseDate(endStr)
			if err != nil {
				return fmt.Errorf("--end: %w", err)
			}
			return withStores(cmd.Context(), func(ctx context.Context, s *store.Stores) error {
				r, err := s.Environments.Reserve(ctx, viper.GetString("actor-id"), store.ReservationCreate{
					EnvironmentID: args[0],
					MemberID:      memberID,
					EffortID:      effortID,
					StartDate:     start,
					EndDate:       end,
					Notes:         notes,
				})
				if err != nil {
					return err
				}
				return printJSON(r)
			})
		},
	}
	reserve.Flags().StringVar(&memberID, "member", "", "member holding the reservation")
	reserve.Flags().StringVar(&effortID, "effort", "", "related effort id")
	reserve.Flags().StringVar(&notes, "notes", "", "notes")
	reserve.Flags().StringVar(&startStr, "start", "", "start date (YYYY-MM-DD or RFC3339)")
	reserve.Flags().StringVar(&endStr, "end", "", "end date, exclusive (YYYY-MM-DD or RFC3339)")
	env.AddCommand(reserve)

	connect := &cobra.Command{
		Use:   "connect <env-a> <env-b>",
		Short: "Record a bidirectional connection between two environments",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd.Context(), func(ctx context.Context, s *store.Stores) error {
				c, err := s.Environments.Connect(ctx, viper.GetString("actor-id"), args[0], args[1])
				if err != nil {
					return err
				}
				return printJSON(c)
			})
		},
	}
	env.AddCommand(connect)
	return env
}

func effortCmd() *cobra.Command {
	effort := &cobra.Command{Use: "effort", Short: "Manage test efforts"}
	var sprintID, teamID, status, search, sortKey string
	var desc bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List test efforts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd.Context(), func(ctx context.Context, s *store.Stores) error {
				f := store.EffortFilters{Search: search}
				if sprintID != "" {
					f.SprintID = &sprintID
				}
				if teamID != "" {
					f.TeamID = &teamID
				}
				if status != "" {
					st := domain.Status(status)
					f.Status = &st
				}
				efforts := s.Efforts.List(ctx, f)
				if sortKey != "" {
					dir := view.Ascending
					if desc {
						dir = view.Descending
					}
					efforts = view.Sort(efforts, view.SortState{Key: sortKey, Dir: dir},
						map[string]func(a, b domain.TestEffort) bool{
							"title":    func(a, b domain.TestEffort) bool { return a.Title < b.Title },
							"status":   func(a, b domain.TestEffort) bool { return a.Status < b.Status },
							"progress": func(a, b domain.TestEffort) bool { return a.Progress < b.Progress },
						})
				}
				if viper.GetBool("json") {
					return printJSON(efforts)
				}
				tw := newTable()
				tw.AppendHeader(table.Row{"ID", "Title", "Status", "Priority", "Team", "Assignee", "Progress"})
				for _, e := range efforts {
					tw.AppendRow(table.Row{e.ID, e.Title, e.Status, e.Priority,
						s.Teams.NameOf(e.TeamID), s.Members.NameOf(e.AssigneeID), fmt.Sprintf("%d%%", e.Progress)})
				}
				fmt.Println(tw.Render())
				return nil
			})
		},
	}
	list.Flags().StringVar(&sprintID, "sprint", "", "filter by sprint id")
	list.Flags().StringVar(&teamID, "team", "", "filter by team id")
	list.Flags().StringVar(&status, "status", "", "filter by status")
	list.Flags().StringVar(&search, "search", "", "title substring match")
	list.Flags().StringVar(&sortKey, "sort", "", "sort column (title|status|progress)")
	list.Flags().BoolVar(&desc, "desc", false, "sort descending")
	effort.AddCommand(list)

	var title, description, createSprint, createTeam, testType, priority string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create test effort",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd.Context(), func(ctx context.Context, s *store.Stores) error {
				e, err := s.Efforts.Create(ctx, viper.GetString("actor-id"), store.EffortCreate{
					SprintID:             createSprint,
					TeamID:               createTeam,
					TestTypeDefinitionID: testType,
					Title:                title,
					Description:          description,
					Priority:             domain.Priority(priority),
				})
				if err != nil {
					return err
				}
				return printJSON(e)
			})
		},
	}
	create.Flags().StringVar(&title, "title", "", "effort title")
	create.Flags().StringVar(&description, "description", "", "effort description")
	create.Flags().StringVar(&createSprint, "sprint", "", "sprint id")
	create.Flags().StringVar(&createTeam, "team", "", "team id")
	create.Flags().StringVar(&testType, "type", "", "test type definition id")
	create.Flags().StringVar(&priority, "priority", "", "low|medium|high")
	effort.AddCommand(create)

	setStatus := &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Set effort status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd.Context(), func(ctx context.Context, s *store.Stores) error {
				st := domain.Status(args[1])
				e, err := s.Efforts.Update(ctx, viper.GetString("actor-id"), args[0], store.EffortPatch{Status: &st})
				if err != nil {
					return err
				}
				return printJSON(e)
			})
		},
	}
	effort.AddCommand(setStatus)
	return effort
}

func auditCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recent audit events, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd.Context(), func(ctx context.Context, s *store.Stores) error {
				events := s.Audit.Recent(limit)
				if viper.GetBool("json") {
					return printJSON(events)
				}
				tw := newTable()
				tw.AppendHeader(table.Row{"Time", "Actor", "Action", "Entity", "Name"})
				for _, e := range events {
					tw.AppendRow(table.Row{e.CreatedAt.Format(time.RFC3339), e.UserID, e.Action,
						fmt.Sprintf("%s/%s", e.EntityType, e.EntityID), e.EntityName})
				}
				fmt.Println(tw.Render())
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of events")
	return cmd
}

func exportCmd() *cobra.Command {
	var piID, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the sprint effort CSV report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd.Context(), func(ctx context.Context, s *store.Stores) error {
				var pi *string
				if piID != "" {
					pi = &piID
				}
				sprints := s.Sprints.List(ctx, store.SprintFilters{PIID: pi})
				efforts := s.Efforts.List(ctx, store.EffortFilters{PIID: pi})
				w := os.Stdout
				if out != "" {
					f, err := os.Create(out)
					if err != nil {
						return err
					}
					defer f.Close()
					w = f
				}
				return report.WriteCSV(w, sprints, efforts, s.TestTypes, s.Teams)
			})
		},
	}
	cmd.Flags().StringVar(&piID, "pi", "", "limit to one program increment")
	cmd.Flags().StringVar(&out, "out", "", "output file (default stdout)")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			cfg, err := config.Load(workspace)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			if basePath == "" {
				basePath = cfg.Server.BasePath
			}
			st, closeStore, err := openStore(workspace, cfg)
			if err != nil {
				return err
			}
			defer closeStore()
			adapter := storage.NewAdapter(st, nil)
			stores := store.New(adapter, audit.NewLog(), store.Options{
				WorkspaceID: cfg.Workspace.ID,
				SkipSeed:    !cfg.Seed,
			})
			secret := cfg.Auth.JWTSecret
			if env := os.Getenv("TESTOPS_JWT_SECRET"); env != "" {
				secret = env
			}
			handler, err := server.New(server.Config{
				Stores:   stores,
				BasePath: basePath,
				Auth: server.AuthConfig{
					JWTSecret:        secret,
					AllowActorHeader: cfg.Auth.AllowActorHeader,
				},
			})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: addr, Handler: handler}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			fmt.Printf("Serving TestOps API on http://%s%s (OpenAPI at %s/openapi.json, Swagger UI at /docs)\n", addr, basePath, basePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from testops.yml)")
	cmd.Flags().StringVar(&basePath, "base-path", "", "API base path (default from testops.yml)")
	return cmd
}

func openStore(workspace string, cfg *config.Config) (storage.Store, func(), error) {
	if cfg.Storage.Backend == "memory" {
		return storage.NewMemory(), func() {}, nil
	}
	db, err := storage.OpenSQLite(workspace)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { db.Close() }, nil
}

func withStores(ctx context.Context, fn func(context.Context, *store.Stores) error) error {
	workspace := viper.GetString("workspace")
	cfg, err := config.Load(workspace)
	if err != nil {
		return err
	}
	st, closeStore, err := openStore(workspace, cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	adapter := storage.NewAdapter(st, nil)
	stores := store.New(adapter, audit.NewLog(), store.Options{
		WorkspaceID: cfg.Workspace.ID,
		SkipSeed:    !cfg.Seed,
	})
	return fn(ctx, stores)
}

func newTable() table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	return tw
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func joinRoles(roles []domain.Role) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, ",")
}

func parseDate(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, errors.New("required")
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}
