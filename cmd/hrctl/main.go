// Command hrctl is a terminal client for the user management API.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/axxaxinx/user-management-final-123/internal/domain/models"
	"github.com/axxaxinx/user-management-final-123/pkg/client"
)

func main() {
	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}

	root := &cli.Command{
		Name:  "hrctl",
		Usage: "Manage accounts, departments and employee requests",
		Commands: []*cli.Command{
			loginCommand(),
			logoutCommand(),
			whoamiCommand(),
			accountsCommand(),
			departmentsCommand(),
			requestsCommand(),
		},
	}

	if err := root.Run(context.Background(), args); err != nil {
		log.Fatal(err)
	}
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "output raw JSON"}
}

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Authenticate and store the refresh token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "server", Value: defaultServer},
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Required: true},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cl, err := client.New(c.String("server"))
			if err != nil {
				return err
			}
			defer cl.Close()

			s, err := cl.Login(ctx, c.String("email"), c.String("password"))
			if err != nil {
				return err
			}
			cfg := cliConfig{Server: c.String("server"), Email: s.Email, RefreshToken: cl.RefreshCookie()}
			if err := saveConfig(cfg); err != nil {
				return err
			}
			fmt.Printf("logged in as %s (%s)\n", s.Email, s.Role)
			return nil
		},
	}
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Revoke the stored refresh token",
		Action: func(ctx context.Context, c *cli.Command) error {
			err := withSession(ctx, func(cl *client.Client) error {
				return cl.Logout(ctx)
			})
			cfg, loadErr := loadConfig()
			if loadErr != nil {
				return loadErr
			}
			cfg.RefreshToken = ""
			if saveErr := saveConfig(cfg); saveErr != nil {
				return saveErr
			}
			if err != nil {
				return err
			}
			fmt.Println("logged out")
			return nil
		},
	}
}

func whoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the signed-in account",
		Flags: []cli.Flag{jsonFlag()},
		Action: func(ctx context.Context, c *cli.Command) error {
			return withSession(ctx, func(cl *client.Client) error {
				s := cl.Session()
				if c.Bool("json") {
					return printJSON(s)
				}
				printKV([][2]string{
					{"id", formatID(s.ID)},
					{"email", s.Email},
					{"name", strings.TrimSpace(s.FirstName + " " + s.LastName)},
					{"role", s.Role},
					{"token_expires", formatTime(s.ExpiresAt)},
				})
				return nil
			})
		},
	}
}

func accountsCommand() *cli.Command {
	return &cli.Command{
		Name:  "accounts",
		Usage: "Account administration",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List accounts",
				Flags: []cli.Flag{jsonFlag()},
				Action: func(ctx context.Context, c *cli.Command) error {
					return withSession(ctx, func(cl *client.Client) error {
						out, err := cl.Accounts(ctx)
						if err != nil {
							return err
						}
						if c.Bool("json") {
							return printJSON(out)
						}
						printAccounts(out)
						return nil
					})
				},
			},
			{
				Name:  "delete",
				Usage: "Delete an account",
				Flags: []cli.Flag{&cli.UintFlag{Name: "id", Required: true}},
				Action: func(ctx context.Context, c *cli.Command) error {
					return withSession(ctx, func(cl *client.Client) error {
						if err := cl.DeleteAccount(ctx, uint(c.Uint("id"))); err != nil {
							return err
						}
						fmt.Printf("deleted account %d\n", c.Uint("id"))
						return nil
					})
				},
			},
		},
	}
}

func departmentsCommand() *cli.Command {
	return &cli.Command{
		Name:  "departments",
		Usage: "Department listing",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List departments with employee counts",
				Flags: []cli.Flag{jsonFlag()},
				Action: func(ctx context.Context, c *cli.Command) error {
					return withSession(ctx, func(cl *client.Client) error {
						out, err := cl.Departments(ctx)
						if err != nil {
							return err
						}
						if c.Bool("json") {
							return printJSON(out)
						}
						printDepartments(out)
						return nil
					})
				},
			},
		},
	}
}

func requestsCommand() *cli.Command {
	listAction := func(mine bool) func(context.Context, *cli.Command) error {
		return func(ctx context.Context, c *cli.Command) error {
			return withSession(ctx, func(cl *client.Client) error {
				var (
					out []models.Request
					err error
				)
				if mine {
					out, err = cl.MyRequests(ctx)
				} else {
					out, err = cl.Requests(ctx)
				}
				if err != nil {
					return err
				}
				if c.Bool("json") {
					return printJSON(out)
				}
				printRequests(out)
				return nil
			})
		}
	}
	statusAction := func(status models.Status) func(context.Context, *cli.Command) error {
		return func(ctx context.Context, c *cli.Command) error {
			return withSession(ctx, func(cl *client.Client) error {
				out, err := cl.SetRequestStatus(ctx, uint(c.Uint("id")), status)
				if err != nil {
					return err
				}
				fmt.Printf("request %d is now %s\n", out.ID, out.Status)
				return nil
			})
		}
	}

	return &cli.Command{
		Name:  "requests",
		Usage: "Employee requests",
		Commands: []*cli.Command{
			{
				Name:   "mine",
				Usage:  "List your own requests",
				Flags:  []cli.Flag{jsonFlag()},
				Action: listAction(true),
			},
			{
				Name:   "list",
				Usage:  "List all requests",
				Flags:  []cli.Flag{jsonFlag()},
				Action: listAction(false),
			},
			{
				Name:  "show",
				Usage: "Show a request with its items",
				Flags: []cli.Flag{&cli.UintFlag{Name: "id", Required: true}, jsonFlag()},
				Action: func(ctx context.Context, c *cli.Command) error {
					return withSession(ctx, func(cl *client.Client) error {
						out, err := cl.Request(ctx, uint(c.Uint("id")))
						if err != nil {
							return err
						}
						if c.Bool("json") {
							return printJSON(out)
						}
						printRequest(out)
						return nil
					})
				},
			},
			{
				Name:  "create",
				Usage: "Submit a request",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "type", Required: true, Usage: "Equipment, Leave or Resources"},
					&cli.StringFlag{Name: "items", Required: true, Usage: "name[:quantity],name[:quantity]"},
					&cli.StringFlag{Name: "description"},
					jsonFlag(),
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					items, err := parseItems(c.String("items"))
					if err != nil {
						return err
					}
					in := client.RequestInput{
						Type:        models.RequestType(c.String("type")),
						Description: c.String("description"),
						Items:       items,
					}
					return withSession(ctx, func(cl *client.Client) error {
						out, err := cl.CreateRequest(ctx, in)
						if err != nil {
							return err
						}
						if c.Bool("json") {
							return printJSON(out)
						}
						printRequest(out)
						return nil
					})
				},
			},
			{
				Name:   "approve",
				Usage:  "Approve a request",
				Flags:  []cli.Flag{&cli.UintFlag{Name: "id", Required: true}},
				Action: statusAction(models.StatusApproved),
			},
			{
				Name:   "reject",
				Usage:  "Reject a request",
				Flags:  []cli.Flag{&cli.UintFlag{Name: "id", Required: true}},
				Action: statusAction(models.StatusRejected),
			},
			{
				Name:  "delete",
				Usage: "Delete a request",
				Flags: []cli.Flag{&cli.UintFlag{Name: "id", Required: true}},
				Action: func(ctx context.Context, c *cli.Command) error {
					return withSession(ctx, func(cl *client.Client) error {
						if err := cl.DeleteRequest(ctx, uint(c.Uint("id"))); err != nil {
							return err
						}
						fmt.Printf("deleted request %d\n", c.Uint("id"))
						return nil
					})
				},
			},
		},
	}
}

// parseItems reads "Laptop:1,Mouse" into request items. A missing quantity
// defaults to 1 on the server.
func parseItems(raw string) ([]client.RequestItemInput, error) {
	var items []client.RequestItemInput
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, qty, hasQty := strings.Cut(part, ":")
		item := client.RequestItemInput{Name: strings.TrimSpace(name)}
		if hasQty {
			n, err := strconv.Atoi(strings.TrimSpace(qty))
			if err != nil || n < 1 {
				return nil, fmt.Errorf("invalid quantity in %q", part)
			}
			item.Quantity = n
		}
		if item.Name == "" {
			return nil, fmt.Errorf("invalid item %q", part)
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("at least one item is required")
	}
	return items, nil
}
