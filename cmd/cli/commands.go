package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/and161185/secret-santa/internal/api"
)

// command is one subcommand. auth commands get the saved token attached.
type command struct {
	usage string
	auth  bool
	run   func(ctx context.Context, cli api.SecretSantaClient, args []string, out io.Writer) error
}

var commands = map[string]command{
	"register":    {usage: "-name <name> -email <email> -p <password>   (saves token)", run: cmdRegister},
	"login":       {usage: "-email <email> -p <password>                (saves token)", run: cmdLogin},
	"logout":      {usage: "", auth: true, run: cmdLogout},
	"me":          {usage: "", auth: true, run: cmdMe},
	"create":      {usage: "-name <name> [-desc d] [-password p] [-public] [-max n]", auth: true, run: cmdCreate},
	"search":      {usage: "[-q text]", auth: true, run: cmdSearch},
	"join":        {usage: "-code <code|invite link> [-password p]", auth: true, run: cmdJoin},
	"groups":      {usage: "", auth: true, run: cmdGroups},
	"show":        {usage: "-group <id>", auth: true, run: cmdShow},
	"lookup":      {usage: "-code <code|invite link>", run: cmdLookup},
	"wish-set":    {usage: "-group <id> (-file <json> | -item <name> ...)", auth: true, run: cmdWishSet},
	"wish-get":    {usage: "-group <id>", auth: true, run: cmdWishGet},
	"draw":        {usage: "-group <id>", auth: true, run: cmdDraw},
	"receiver":    {usage: "-group <id>", auth: true, run: cmdReceiver},
	"assignments": {usage: "-group <id>", auth: true, run: cmdAssignments},
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// stringList collects a repeatable flag.
type stringList []string

func (s *stringList) String() string     { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error { *s = append(*s, v); return nil }

// joinCode accepts a bare code or an invite link ending in /join/<code>.
func joinCode(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndex(s, "/join/"); i >= 0 {
		s = s[i+len("/join/"):]
	}
	return strings.Trim(s, "/")
}

func groupArg(name string, args []string) (*api.GroupIDRequest, error) {
	fs := newFlags(name)
	id := fs.String("group", "", "group id")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *id == "" {
		return nil, errors.New("need -group")
	}
	return &api.GroupIDRequest{GroupID: *id}, nil
}

func cmdRegister(ctx context.Context, cli api.SecretSantaClient, args []string, out io.Writer) error {
	fs := newFlags("register")
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email")
	p := fs.String("p", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *email == "" || *p == "" {
		return errors.New("need -name, -email and -p")
	}
	res, err := cli.Register(ctx, &api.RegisterRequest{Name: *name, Email: *email, Password: *p})
	if err != nil {
		return err
	}
	if err := saveToken(res); err != nil {
		return err
	}
	fmt.Fprintln(out, res.User.ID)
	return nil
}

func cmdLogin(ctx context.Context, cli api.SecretSantaClient, args []string, out io.Writer) error {
	fs := newFlags("login")
	email := fs.String("email", "", "email")
	p := fs.String("p", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *p == "" {
		return errors.New("need -email and -p")
	}
	res, err := cli.Login(ctx, &api.LoginRequest{Email: *email, Password: *p})
	if err != nil {
		return err
	}
	if err := saveToken(res); err != nil {
		return err
	}
	fmt.Fprintln(out, "ok")
	return nil
}

func cmdLogout(ctx context.Context, cli api.SecretSantaClient, _ []string, out io.Writer) error {
	if _, err := cli.Logout(ctx, &api.Empty{}); err != nil {
		return err
	}
	if err := dropToken(); err != nil {
		return err
	}
	fmt.Fprintln(out, "ok")
	return nil
}

func cmdMe(ctx context.Context, cli api.SecretSantaClient, _ []string, out io.Writer) error {
	res, err := cli.Me(ctx, &api.Empty{})
	if err != nil {
		return err
	}
	printJSON(out, res.User)
	return nil
}

func cmdCreate(ctx context.Context, cli api.SecretSantaClient, args []string, out io.Writer) error {
	fs := newFlags("create")
	req := &api.CreateGroupRequest{}
	fs.StringVar(&req.Name, "name", "", "group name")
	fs.StringVar(&req.Description, "desc", "", "description")
	fs.StringVar(&req.Password, "password", "", "join password")
	fs.BoolVar(&req.IsPublic, "public", false, "list in search")
	fs.IntVar(&req.MaxParticipants, "max", 0, "capacity (server default when 0)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if req.Name == "" {
		return errors.New("need -name")
	}
	res, err := cli.CreateGroup(ctx, req)
	if err != nil {
		return err
	}
	printJSON(out, res)
	return nil
}

func cmdSearch(ctx context.Context, cli api.SecretSantaClient, args []string, out io.Writer) error {
	fs := newFlags("search")
	q := fs.String("q", "", "name or code fragment")
	if err := fs.Parse(args); err != nil {
		return err
	}
	res, err := cli.SearchGroups(ctx, &api.SearchGroupsRequest{Query: *q})
	if err != nil {
		return err
	}
	printJSON(out, res.Groups)
	return nil
}

func cmdJoin(ctx context.Context, cli api.SecretSantaClient, args []string, out io.Writer) error {
	fs := newFlags("join")
	code := fs.String("code", "", "join code or invite link")
	pw := fs.String("password", "", "join password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *code == "" {
		return errors.New("need -code")
	}
	res, err := cli.JoinGroup(ctx, &api.JoinGroupRequest{Code: joinCode(*code), Password: *pw})
	if err != nil {
		return err
	}
	printJSON(out, res.Group)
	return nil
}

func cmdGroups(ctx context.Context, cli api.SecretSantaClient, _ []string, out io.Writer) error {
	res, err := cli.ListMyGroups(ctx, &api.Empty{})
	if err != nil {
		return err
	}
	printJSON(out, res.Groups)
	return nil
}

func cmdShow(ctx context.Context, cli api.SecretSantaClient, args []string, out io.Writer) error {
	req, err := groupArg("show", args)
	if err != nil {
		return err
	}
	res, err := cli.GetGroup(ctx, req)
	if err != nil {
		return err
	}
	printJSON(out, res.Group)
	return nil
}

func cmdLookup(ctx context.Context, cli api.SecretSantaClient, args []string, out io.Writer) error {
	fs := newFlags("lookup")
	code := fs.String("code", "", "join code or invite link")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *code == "" {
		return errors.New("need -code")
	}
	res, err := cli.GetGroupByCode(ctx, &api.GetGroupByCodeRequest{Code: joinCode(*code)})
	if err != nil {
		return err
	}
	printJSON(out, res.Group)
	return nil
}

// parseWishlist reads a JSON array of items. null means an empty list.
func parseWishlist(b []byte) ([]api.WishItem, error) {
	var items []api.WishItem
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("wishlist must be a JSON array of {name, description, link}: %w", err)
	}
	if items == nil {
		items = []api.WishItem{}
	}
	return items, nil
}

func cmdWishSet(ctx context.Context, cli api.SecretSantaClient, args []string, out io.Writer) error {
	fs := newFlags("wish-set")
	id := fs.String("group", "", "group id")
	file := fs.String("file", "", "JSON array of items ('-'=stdin)")
	var names stringList
	fs.Var(&names, "item", "item name (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" || (*file == "" && len(names) == 0) {
		return errors.New("need -group and -file or -item")
	}

	items := []api.WishItem{}
	if *file != "" {
		b, err := readAll(*file)
		if err != nil {
			return err
		}
		if items, err = parseWishlist(b); err != nil {
			return err
		}
	}
	for _, n := range names {
		items = append(items, api.WishItem{Name: n})
	}

	if _, err := cli.SetWishlist(ctx, &api.SetWishlistRequest{GroupID: *id, Items: items}); err != nil {
		return err
	}
	fmt.Fprintf(out, "saved %d item(s)\n", len(items))
	return nil
}

func cmdWishGet(ctx context.Context, cli api.SecretSantaClient, args []string, out io.Writer) error {
	req, err := groupArg("wish-get", args)
	if err != nil {
		return err
	}
	res, err := cli.GetWishlist(ctx, req)
	if err != nil {
		return err
	}
	printJSON(out, res.Items)
	return nil
}

func printPairings(out io.Writer, ps []api.Pairing) {
	for _, p := range ps {
		fmt.Fprintf(out, "%s -> %s\n", p.Giver, p.Receiver)
	}
}

func cmdDraw(ctx context.Context, cli api.SecretSantaClient, args []string, out io.Writer) error {
	req, err := groupArg("draw", args)
	if err != nil {
		return err
	}
	res, err := cli.Draw(ctx, req)
	if err != nil {
		return err
	}
	printPairings(out, res.Results)
	return nil
}

func cmdReceiver(ctx context.Context, cli api.SecretSantaClient, args []string, out io.Writer) error {
	req, err := groupArg("receiver", args)
	if err != nil {
		return err
	}
	res, err := cli.GetMyReceiver(ctx, req)
	if err != nil {
		return err
	}
	printJSON(out, res.Receiver)
	return nil
}

func cmdAssignments(ctx context.Context, cli api.SecretSantaClient, args []string, out io.Writer) error {
	req, err := groupArg("assignments", args)
	if err != nil {
		return err
	}
	res, err := cli.GetAllAssignments(ctx, req)
	if err != nil {
		return err
	}
	printPairings(out, res.Assignments)
	return nil
}
