package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"clubboard/internal/models"
	"clubboard/internal/view"
)

func credentialFlags(name string, args []string) (string, string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return "", "", err
	}
	return *email, *password, nil
}

func (a *app) signup(ctx context.Context, args []string) error {
	email, password, err := credentialFlags("signup", args)
	if err != nil {
		return err
	}
	a.gate.SetCredentials(email, password)
	if err := a.gate.SignUp(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, a.gate.Message())
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	email, password, err := credentialFlags("login", args)
	if err != nil {
		return err
	}
	a.gate.SetCredentials(email, password)
	if err := a.gate.Login(ctx); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "ログインしました: %s\n", a.gate.MemberID())
	return nil
}

func (a *app) logout(ctx context.Context) error {
	if err := a.gate.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "ログアウトしました")
	return nil
}

func (a *app) whoami() error {
	if a.memberID == "" {
		fmt.Fprintln(a.out, "未ログイン")
		return nil
	}
	if email := a.gate.Email(); email != "" {
		fmt.Fprintf(a.out, "%s (%s)\n", a.memberID, email)
		return nil
	}
	fmt.Fprintln(a.out, a.memberID)
	return nil
}

func partsLabel(p *models.Profile) string {
	var parts []string
	for _, part := range p.PartList() {
		if part != models.PartUnset && part != "" {
			parts = append(parts, string(part))
		}
	}
	if len(parts) == 0 {
		return string(models.PartUnset)
	}
	return strings.Join(parts, "/")
}

func (a *app) printProfiles(profiles []models.Profile) {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\t名前\t期\tパート\t外部\t更新")
	for i := range profiles {
		p := &profiles[i]
		gen := "-"
		if p.Generation != nil {
			gen = strconv.Itoa(*p.Generation)
		}
		name := p.Username
		if p.ID == a.memberID {
			name += " (あなた)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, name, gen, partsLabel(p), p.GaibuIyoku, p.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	_ = tw.Flush()
}

func (a *app) listProfiles(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("profiles", flag.ContinueOnError)
	gen := fs.String("gen", "", "only this generation")
	part := fs.String("part", view.AllParts, "only members playing this part")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.profiles.FetchAll(ctx); err != nil {
		return err
	}
	a.profiles.SetFilter(view.FilterState{Generation: *gen, Part: *part})
	a.printProfiles(a.profiles.Visible())
	return nil
}

func (a *app) showProfile() {
	f := a.profiles.Form()
	rows := [][2]string{
		{"名前", f.Username},
		{"期", f.Generation},
		{"学部", f.SchoolInfo},
		{"パート", strings.Join([]string{string(f.Part), string(f.Part2), string(f.Part3), string(f.Part4)}, " / ")},
		{"音域", f.VocalRange},
		{"好きなアーティスト", f.FavoriteArtists},
		{"やりたいバンド像", f.BandImage},
		{"外部バンド意欲", f.GaibuIyoku},
		{"正規バンド数", f.BandCount},
		{"企画バンド数", f.KikakuCount},
		{"現在の正規", f.CurrentRegular},
		{"現在の企画", f.CurrentKikaku},
		{"LINE", f.LineName},
		{"SNS", f.OtherSNS},
		{"アレルギー", f.Allergy},
		{"自己紹介", f.Bio},
		{"備考", f.Remarks},
		{"アイコン", f.AvatarURL},
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", r[0], r[1])
	}
	_ = tw.Flush()
	if a.profiles.MyDeleted() {
		fmt.Fprintln(a.out, "(非表示中: `clubctl profile restore` で再表示)")
	}
}

// profileFlags binds every form field. Only flags given on the command line
// change the form.
func profileFlags(f *view.ProfileForm) *flag.FlagSet {
	fs := flag.NewFlagSet("profile save", flag.ContinueOnError)
	fs.StringVar(&f.Username, "name", f.Username, "display name")
	fs.StringVar(&f.Generation, "gen", f.Generation, "generation number")
	fs.StringVar(&f.SchoolInfo, "school", f.SchoolInfo, "faculty / year")
	fs.StringVar(&f.FavoriteArtists, "artists", f.FavoriteArtists, "favourite artists")
	fs.StringVar(&f.BandImage, "band-image", f.BandImage, "band you want to form")
	fs.StringVar(&f.LineName, "line", f.LineName, "LINE name")
	fs.StringVar(&f.OtherSNS, "sns", f.OtherSNS, "other SNS")
	fs.StringVar(&f.Remarks, "remarks", f.Remarks, "remarks")
	fs.StringVar(&f.Bio, "bio", f.Bio, "self introduction")
	fs.StringVar(&f.VocalRange, "range", f.VocalRange, "vocal range")
	fs.StringVar(&f.GaibuIyoku, "gaibu", f.GaibuIyoku, "external band interest (あり/なし)")
	fs.StringVar(&f.Allergy, "allergy", f.Allergy, "allergies")
	fs.StringVar(&f.BandCount, "band-count", f.BandCount, "regular bands")
	fs.StringVar(&f.KikakuCount, "kikaku-count", f.KikakuCount, "project bands")
	fs.StringVar(&f.CurrentRegular, "current-regular", f.CurrentRegular, "current regular bands")
	fs.StringVar(&f.CurrentKikaku, "current-kikaku", f.CurrentKikaku, "current project bands")
	fs.Func("part", "main part", func(s string) error { f.Part = models.Part(s); return nil })
	fs.Func("part2", "second part", func(s string) error { f.Part2 = models.Part(s); return nil })
	fs.Func("part3", "third part", func(s string) error { f.Part3 = models.Part(s); return nil })
	fs.Func("part4", "fourth part", func(s string) error { f.Part4 = models.Part(s); return nil })
	return fs
}

func (a *app) profile(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("profile needs a subcommand\n\n%s", usage)
	}
	if err := a.profiles.FetchAll(ctx); err != nil {
		return err
	}
	a.profiles.LoadOwn()

	switch args[0] {
	case "show":
		a.showProfile()
		return nil
	case "save":
		form := a.profiles.Form()
		if err := profileFlags(&form).Parse(args[1:]); err != nil {
			return err
		}
		a.profiles.SetForm(form)
		if err := a.profiles.Save(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "保存しました")
		return nil
	case "avatar":
		if len(args) < 2 {
			return fmt.Errorf("profile avatar needs a file")
		}
		body, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		if err := a.profiles.UploadAvatar(ctx, filepath.Base(args[1]), body); err != nil {
			return err
		}
		if err := a.profiles.Save(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, a.profiles.Form().AvatarURL)
		return nil
	case "hide":
		if err := a.profiles.SoftDelete(ctx, a.memberID); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "非表示にしました")
		return nil
	case "restore":
		if err := a.profiles.Restore(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "再表示しました")
		return nil
	case "delete":
		if err := a.profiles.Delete(ctx, a.memberID); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "削除しました")
		return nil
	default:
		return fmt.Errorf("unknown profile subcommand %q", args[0])
	}
}

func (a *app) printBoard() {
	posts := a.board.Posts()
	if len(posts) == 0 {
		fmt.Fprintln(a.out, "投稿はまだありません")
		return
	}
	for i := range posts {
		p := &posts[i]
		author := p.ProfileID
		if p.Author != nil && p.Author.Username != "" {
			author = p.Author.Username
		}
		mark := "♡"
		if a.board.IsLiked(p) {
			mark = "♥"
		}
		fmt.Fprintf(a.out, "#%d [%s] %s / 募集: %s  by %s  %s%d\n",
			p.ID, p.PostType, p.Theme, p.TargetParts, author, mark, len(p.Likes))
		if p.Members != "" {
			fmt.Fprintf(a.out, "    メンバー: %s\n", p.Members)
		}
		if p.StartPeriod != "" {
			fmt.Fprintf(a.out, "    開始: %s\n", p.StartPeriod)
		}
		if p.ExtraRemarks != "" {
			fmt.Fprintf(a.out, "    %s\n", p.ExtraRemarks)
		}
		for _, c := range a.board.VisibleComments(p) {
			name := c.ProfileID
			if c.Author != nil && c.Author.Username != "" {
				name = c.Author.Username
			}
			fmt.Fprintf(a.out, "    > %s: %s\n", name, c.Content)
		}
	}
}

func postFlags(name string, f *view.PostForm) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&f.Theme, "theme", f.Theme, "theme")
	fs.StringVar(&f.TargetParts, "parts", f.TargetParts, "parts wanted")
	fs.StringVar(&f.Members, "members", f.Members, "current members")
	fs.StringVar(&f.StartPeriod, "start", f.StartPeriod, "start period")
	fs.StringVar(&f.ExtraRemarks, "remarks", f.ExtraRemarks, "remarks")
	fs.Func("type", "正規, 企画 or 考え中", func(s string) error { f.PostType = models.PostType(s); return nil })
	return fs
}

func parsePostID(args []string) (uint, []string, error) {
	if len(args) == 0 {
		return 0, nil, fmt.Errorf("missing post id")
	}
	id, err := strconv.ParseUint(strings.TrimPrefix(args[0], "#"), 10, 64)
	if err != nil || id == 0 {
		return 0, nil, fmt.Errorf("invalid post id %q", args[0])
	}
	return uint(id), args[1:], nil
}

func (a *app) findPost(id uint) (models.BandPost, error) {
	for _, p := range a.board.Posts() {
		if p.ID == id {
			return p, nil
		}
	}
	return models.BandPost{}, models.NewNotFoundError("Post", id)
}

func (a *app) boardCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}
	if err := a.board.FetchAll(ctx); err != nil {
		return err
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "list":
	case "post":
		form := view.NewPostForm()
		if err := postFlags("board post", &form).Parse(rest); err != nil {
			return err
		}
		a.board.SetForm(form)
		if err := a.board.Save(ctx); err != nil {
			return err
		}
	case "edit":
		id, rest, err := parsePostID(rest)
		if err != nil {
			return err
		}
		post, err := a.findPost(id)
		if err != nil {
			return err
		}
		if err := a.board.StartEdit(post); err != nil {
			return err
		}
		form := a.board.Form()
		if err := postFlags("board edit", &form).Parse(rest); err != nil {
			a.board.CancelEdit()
			return err
		}
		a.board.SetForm(form)
		if err := a.board.Save(ctx); err != nil {
			return err
		}
	case "delete":
		id, _, err := parsePostID(rest)
		if err != nil {
			return err
		}
		if err := a.board.Delete(ctx, id); err != nil {
			return err
		}
	case "like", "unlike":
		id, _, err := parsePostID(rest)
		if err != nil {
			return err
		}
		if err := a.board.ToggleLike(ctx, id, sub == "unlike"); err != nil {
			return err
		}
	case "comment":
		id, rest, err := parsePostID(rest)
		if err != nil {
			return err
		}
		a.board.SetCommentDraft(id, strings.Join(rest, " "))
		if err := a.board.Comment(ctx, id); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown board subcommand %q", sub)
	}
	a.printBoard()
	return nil
}

func (a *app) watch(ctx context.Context, args []string) error {
	collections := args
	if len(collections) == 0 {
		collections = models.Collections
	}
	refetch := func(ctx context.Context) error {
		fmt.Fprintln(a.out, "---")
		if err := a.profiles.FetchAll(ctx); err != nil {
			return err
		}
		a.printProfiles(a.profiles.Visible())
		if err := a.board.FetchAll(ctx); err != nil {
			return err
		}
		a.printBoard()
		return nil
	}
	if err := refetch(ctx); err != nil {
		return err
	}
	return view.Watch(ctx, a.api, refetch, collections...)
}
