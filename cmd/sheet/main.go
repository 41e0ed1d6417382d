// Command sheet inspects and updates stored characters against the
// configured store and rules directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/KirkDiggler/dnd-character-sheet/internal/config"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/character"
	rulebook "github.com/KirkDiggler/dnd-character-sheet/internal/domain/rulebook/dnd5e"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/shared"
	"github.com/KirkDiggler/dnd-character-sheet/internal/observability"
	"github.com/KirkDiggler/dnd-character-sheet/internal/services"
	characterService "github.com/KirkDiggler/dnd-character-sheet/internal/services/character"
)

const usage = `Usage: sheet <command> [args]

Commands:
  list <owner-id>
  show <character-id>
  create -owner ID -name NAME -class KEY [-level N] [-subclass KEY] [-scores str=15,dex=14,...]
  acquire <character-id> <item-id> [quantity]
  equip <character-id> <entry-id>
  unequip <character-id> <entry-id>
  attune <character-id> <entry-id>
  use <character-id> <resource-key>
  damage <character-id> <amount>
  heal <character-id> <amount>
  short-rest <character-id>
  long-rest <character-id>
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := services.NewProvider(ctx, &services.ProviderConfig{
		Config: cfg,
		Logger: logger,
	})
	if err != nil {
		logger.Fatal("failed to start services", zap.Error(err))
	}

	app := &app{provider: provider, out: os.Stdout}
	runErr := app.run(ctx, os.Args[1], os.Args[2:])
	if err := provider.Close(); err != nil {
		logger.Warn("failed to close store", zap.Error(err))
	}
	if runErr != nil {
		logger.Error("command failed", zap.String("command", os.Args[1]), zap.Error(runErr))
		os.Exit(1)
	}
}

type app struct {
	provider *services.Provider
	out      io.Writer
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "list":
		if len(args) != 1 {
			return usageError(command)
		}
		return a.list(ctx, args[0])
	case "show":
		if len(args) != 1 {
			return usageError(command)
		}
		sheet, err := a.provider.CharacterService.Open(ctx, args[0])
		if err != nil {
			return err
		}
		printSheet(a.out, sheet.Snapshot())
		return nil
	case "create":
		return a.create(ctx, args)
	case "acquire":
		return a.acquire(ctx, args)
	case "equip", "unequip", "attune", "use", "damage", "heal":
		if len(args) != 2 {
			return usageError(command)
		}
		cmd, err := commandFor(command, args[1])
		if err != nil {
			return err
		}
		return a.execute(ctx, args[0], cmd)
	case "short-rest", "long-rest":
		if len(args) != 1 {
			return usageError(command)
		}
		return a.rest(ctx, args[0], command == "long-rest")
	}
	return usageError(command)
}

func usageError(command string) error {
	return fmt.Errorf("bad arguments for %q\n%s", command, usage)
}

func commandFor(name, arg string) (character.Command, error) {
	switch name {
	case "equip":
		return character.EquipItem{EntryID: arg}, nil
	case "unequip":
		return character.UnequipItem{EntryID: arg}, nil
	case "attune":
		return character.AttuneItem{EntryID: arg}, nil
	case "use":
		return character.UseResource{Key: arg}, nil
	}

	amount, err := strconv.Atoi(arg)
	if err != nil || amount < 0 {
		return nil, fmt.Errorf("amount must be a non-negative number, got %q", arg)
	}
	if name == "damage" {
		return character.Damage{Amount: amount}, nil
	}
	return character.Heal{Amount: amount}, nil
}

func (a *app) list(ctx context.Context, ownerID string) error {
	chars, err := a.provider.CharacterService.List(ctx, ownerID)
	if err != nil {
		return err
	}
	for _, c := range chars {
		fmt.Fprintf(a.out, "%s\t%s\tlevel %d\n", c.ID, c.Name, c.CharacterLevel())
	}
	return nil
}

func (a *app) create(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(a.out)
	owner := fs.String("owner", "", "owner ID")
	name := fs.String("name", "", "character name")
	classKey := fs.String("class", "", "class key")
	subclassKey := fs.String("subclass", "", "subclass key")
	level := fs.Int("level", 1, "class level")
	scores := fs.String("scores", "", "ability scores, e.g. str=15,dex=14")
	if err := fs.Parse(args); err != nil {
		return err
	}

	abilityScores, err := parseScores(*scores)
	if err != nil {
		return err
	}
	class, err := a.provider.Catalog.Class(*classKey)
	if err != nil {
		return err
	}
	classLevel := &rulebook.ClassLevel{Class: class, Level: *level}
	if *subclassKey != "" {
		sub, err := a.provider.Catalog.Subclass(*classKey, *subclassKey)
		if err != nil {
			return err
		}
		classLevel.Subclass = sub
	}

	sheet, err := a.provider.CharacterService.Create(ctx, &characterService.CreateInput{
		OwnerID:       *owner,
		Name:          *name,
		AbilityScores: abilityScores,
		Classes:       []*rulebook.ClassLevel{classLevel},
	})
	if err != nil {
		return err
	}
	printSheet(a.out, sheet.Snapshot())
	return nil
}

func parseScores(s string) (map[shared.Attribute]int, error) {
	scores := map[shared.Attribute]int{}
	if strings.TrimSpace(s) == "" {
		return scores, nil
	}
	for _, pair := range strings.Split(s, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("score %q must look like str=15", pair)
		}
		attr, known := shared.ParseAttribute(key)
		if !known {
			return nil, fmt.Errorf("unknown ability %q", key)
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("score for %s is not a number: %q", attr, value)
		}
		scores[attr] = n
	}
	return scores, nil
}

func (a *app) acquire(ctx context.Context, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return usageError("acquire")
	}
	quantity := 1
	if len(args) == 3 {
		n, err := strconv.Atoi(args[2])
		if err != nil || n < 1 {
			return fmt.Errorf("quantity must be a positive number, got %q", args[2])
		}
		quantity = n
	}
	item, err := a.provider.Catalog.Item(args[1])
	if err != nil {
		return err
	}

	sheet, err := a.provider.CharacterService.Open(ctx, args[0])
	if err != nil {
		return err
	}
	updated, err := sheet.AcquireItem(ctx, item, quantity)
	if err != nil {
		return err
	}
	return a.finish(sheet, updated)
}

func (a *app) execute(ctx context.Context, characterID string, cmd character.Command) error {
	sheet, err := a.provider.CharacterService.Open(ctx, characterID)
	if err != nil {
		return err
	}
	updated, err := sheet.Execute(ctx, cmd)
	if err != nil {
		return err
	}
	return a.finish(sheet, updated)
}

func (a *app) rest(ctx context.Context, characterID string, long bool) error {
	sheet, err := a.provider.CharacterService.Open(ctx, characterID)
	if err != nil {
		return err
	}
	var updated *character.Character
	if long {
		updated, err = sheet.LongRest(ctx)
	} else {
		updated, err = sheet.ShortRest(ctx)
	}
	if err != nil {
		return err
	}
	return a.finish(sheet, updated)
}

// finish waits for the background write so the process does not exit
// before the store has the change.
func (a *app) finish(sheet *characterService.Sheet, updated *character.Character) error {
	if err := sheet.Wait(); err != nil {
		return fmt.Errorf("change was not saved: %w", err)
	}
	printSheet(a.out, updated)
	return nil
}

func printSheet(w io.Writer, c *character.Character) {
	fmt.Fprintf(w, "%s (%s)\n", c.Name, c.ID)

	classes := make([]string, 0, len(c.Classes))
	for _, cl := range c.Classes {
		label := fmt.Sprintf("%s %d", cl.Key(), cl.Level)
		if cl.Subclass != nil {
			label += " (" + cl.Subclass.Name + ")"
		}
		classes = append(classes, label)
	}
	fmt.Fprintf(w, "Level %d: %s\n", c.CharacterLevel(), strings.Join(classes, ", "))

	hp := fmt.Sprintf("%d/%d", c.HitPoints.Current, c.EffectiveMaxHP())
	if c.HitPoints.Temporary > 0 {
		hp += fmt.Sprintf(" (+%d temp)", c.HitPoints.Temporary)
	}
	ac := c.ArmorClass()
	fmt.Fprintf(w, "HP %s  AC %d (%s)  Speed %d  Initiative %+d  Passive Perception %d\n",
		hp, ac.Value, ac.Label, c.EffectiveSpeed(), c.Initiative(), c.PassivePerception())
	if c.Exhaustion > 0 {
		fmt.Fprintf(w, "Exhaustion %d\n", c.Exhaustion)
	}

	scores := make([]string, 0, len(shared.Attributes))
	for _, attr := range shared.Attributes {
		scores = append(scores, fmt.Sprintf("%s %d (%+d, save %+d)",
			strings.ToUpper(string(attr)), c.AbilityScore(attr), c.AbilityModifier(attr), c.SavingThrowModifier(attr)))
	}
	fmt.Fprintf(w, "%s\n", strings.Join(scores, "  "))

	if res := c.Resources(); len(res) > 0 {
		fmt.Fprintln(w, "Resources:")
		for _, r := range res {
			fmt.Fprintf(w, "  %-20s %d/%d used (%s)\n", r.Resource.Key, r.Used, r.Max, r.Resource.RechargeOn)
		}
	}

	if slots := c.MaxSpellSlots(); len(slots) > 0 {
		levels := make([]int, 0, len(slots))
		for lvl := range slots {
			levels = append(levels, lvl)
		}
		sort.Ints(levels)
		parts := make([]string, 0, len(levels))
		for _, lvl := range levels {
			parts = append(parts, fmt.Sprintf("L%d %d/%d", lvl, slots[lvl]-c.UsedSpellSlots[lvl], slots[lvl]))
		}
		fmt.Fprintf(w, "Spell slots: %s\n", strings.Join(parts, "  "))
	}
	if count, lvl := c.PactSlots(); count > 0 {
		fmt.Fprintf(w, "Pact slots: %d/%d at level %d\n", count-c.UsedPactSlots, count, lvl)
	}

	if len(c.Inventory) > 0 {
		fmt.Fprintln(w, "Inventory:")
		for _, e := range c.Inventory {
			var flags []string
			if e.Equipped {
				flags = append(flags, "equipped")
			}
			if e.IsAttuned {
				flags = append(flags, "attuned")
			}
			if e.IsBoundByCurse() {
				flags = append(flags, "cursed")
			}
			line := fmt.Sprintf("  %s  %dx %s", e.ID, e.Quantity, e.DisplayName())
			if len(flags) > 0 {
				line += " [" + strings.Join(flags, ", ") + "]"
			}
			fmt.Fprintln(w, line)
		}
		enc := c.Encumbrance()
		fmt.Fprintf(w, "Carrying %.1f/%d lb\n", enc.Current, enc.Max)
	}
}
