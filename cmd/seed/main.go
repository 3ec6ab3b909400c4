// Command seed populates a result database with generated tournament
// history so the dashboard has something to chew on during development.
package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"github.com/digilab/metalab/internal/adapters/repository"
	"github.com/digilab/metalab/internal/domain/model"
	"github.com/digilab/metalab/pkg/logger"
)

// Default generation constants.
const (
	defaultStores      = 12
	defaultPlayers     = 120
	defaultTournaments = 300
	defaultHistoryDays = 365
	defaultTimeout     = 2 * time.Minute

	onlineStoreShare    = 0.2
	unknownDeckShare    = 0.15
	unrankedResultShare = 0.1
	nullRoundsShare     = 0.3
)

// archetypeSeed is the fixed deck pool the generator draws from.
type archetypeSeed struct {
	name      string
	card      string
	primary   string
	secondary string
}

var archetypePool = []archetypeSeed{
	{"Red Shanks", "OP09-001", "Red", ""},
	{"Red Purple Luffy", "OP05-060", "Red", "Purple"},
	{"Blue Doflamingo", "OP01-060", "Blue", ""},
	{"Blue Yellow Queen", "OP04-100", "Blue", "Yellow"},
	{"Green Bonney", "OP07-019", "Green", ""},
	{"Green Purple Doflamingo", "OP04-031", "Green", "Purple"},
	{"Purple Luffy", "OP05-060", "Purple", ""},
	{"Black Blackbeard", "OP09-093", "Black", ""},
	{"Black Yellow Marco", "OP03-099", "Black", "Yellow"},
	{"Yellow Katakuri", "OP03-099", "Yellow", ""},
	{"White Beard Pirates", "OP02-001", "Red", ""},
}

var formatPool = []model.Format{
	{ID: "OP07", SetName: "OP07", DisplayName: "500 Years in the Future", SortOrder: 1, IsActive: true},
	{ID: "OP08", SetName: "OP08", DisplayName: "Two Legends", SortOrder: 2, IsActive: true},
	{ID: "OP09", SetName: "OP09", DisplayName: "Emperors in the New World", SortOrder: 3, IsActive: true},
	{ID: "OP10", SetName: "OP10", DisplayName: "Royal Blood", SortOrder: 4, IsActive: true},
}

var eventTypes = []string{"locals", "locals", "locals", "store championship", "regional"}

func main() {
	var (
		dbPath      = flag.String("db", "metalab.db", "Path to the result database")
		stores      = flag.Int("stores", defaultStores, "Number of stores to generate")
		players     = flag.Int("players", defaultPlayers, "Number of players to generate")
		tournaments = flag.Int("tournaments", defaultTournaments, "Number of tournaments to generate")
		historyDays = flag.Int("history", defaultHistoryDays, "Days of history to spread events over")
		seed        = flag.Int64("seed", 0, "Deterministic seed (0 picks a random one)")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Named("seed")

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))
	faker := gofakeit.New(uint64(*seed))

	runID := uuid.NewString()
	log.Info(ctx, "seeding database",
		logger.String("run_id", runID),
		logger.String("db_path", *dbPath),
		logger.Int64("seed", *seed),
		logger.Int("tournaments", *tournaments))

	repo, err := repository.Open(*dbPath)
	if err != nil {
		log.Error(ctx, "failed to open database", logger.Error(err))
		return
	}
	defer func() { _ = repo.Close() }()
	if err := repo.Init(ctx); err != nil {
		log.Error(ctx, "failed to apply schema", logger.Error(err))
		return
	}

	g := &generator{repo: repo, rng: rng, faker: faker}
	if err := g.run(ctx, *stores, *players, *tournaments, *historyDays); err != nil {
		log.Error(ctx, "seeding failed", logger.Error(err))
		return
	}

	log.Info(ctx, "seeding complete", logger.String("run_id", runID))
}

type generator struct {
	repo  *repository.Repository
	rng   *rand.Rand
	faker *gofakeit.Faker

	storeIDs  []int64
	playerIDs []int64
	// archetype IDs by pool index; unknownID is the UNKNOWN sentinel.
	archIDs   []int64
	unknownID int64
}

func (g *generator) run(ctx context.Context, stores, players, tournaments, historyDays int) error {
	for _, f := range formatPool {
		if err := g.repo.InsertFormat(ctx, f); err != nil {
			return err
		}
	}

	for i, a := range archetypePool {
		id := int64(i + 1)
		if err := g.repo.InsertArchetype(ctx, model.Archetype{
			ID:             id,
			Name:           a.name,
			DisplayCardID:  a.card,
			PrimaryColor:   a.primary,
			SecondaryColor: a.secondary,
			IsActive:       true,
		}); err != nil {
			return err
		}
		g.archIDs = append(g.archIDs, id)
	}
	g.unknownID = int64(len(archetypePool) + 1)
	if err := g.repo.InsertArchetype(ctx, model.Archetype{
		ID: g.unknownID, Name: model.UnknownArchetype, PrimaryColor: "Other", IsActive: true,
	}); err != nil {
		return err
	}

	for i := 0; i < stores; i++ {
		id := int64(i + 1)
		if err := g.repo.InsertStore(ctx, model.Store{
			ID:       id,
			Name:     g.faker.Company(),
			City:     g.faker.City(),
			State:    g.faker.StateAbr(),
			IsActive: true,
			IsOnline: g.rng.Float64() < onlineStoreShare,
		}); err != nil {
			return err
		}
		g.storeIDs = append(g.storeIDs, id)
	}

	for i := 0; i < players; i++ {
		id := int64(i + 1)
		if err := g.repo.InsertPlayer(ctx, model.Player{
			ID:          id,
			DisplayName: g.faker.Name(),
			IsActive:    true,
		}); err != nil {
			return err
		}
		g.playerIDs = append(g.playerIDs, id)
	}

	for i := 0; i < tournaments; i++ {
		if err := g.tournament(ctx, int64(i+1), historyDays); err != nil {
			return err
		}
	}
	return nil
}

// tournament writes one event and its full standings.
func (g *generator) tournament(ctx context.Context, id int64, historyDays int) error {
	eventDate := time.Now().AddDate(0, 0, -g.rng.Intn(historyDays))
	playerCount := 4 + g.rng.Intn(29) // 4..32
	if playerCount > len(g.playerIDs) {
		playerCount = len(g.playerIDs)
	}

	rounds := 3 + g.rng.Intn(4) // 3..6
	if g.rng.Float64() < nullRoundsShare {
		rounds = 0
	}

	format := formatPool[g.rng.Intn(len(formatPool))].ID

	if err := g.repo.InsertTournament(ctx, model.Tournament{
		ID:          id,
		StoreID:     g.storeIDs[g.rng.Intn(len(g.storeIDs))],
		EventDate:   eventDate,
		EventType:   eventTypes[g.rng.Intn(len(eventTypes))],
		Format:      format,
		PlayerCount: playerCount,
		Rounds:      rounds,
	}); err != nil {
		return err
	}

	entrants := g.rng.Perm(len(g.playerIDs))[:playerCount]
	for place, pi := range entrants {
		res := model.Result{
			TournamentID: id,
			PlayerID:     g.playerIDs[pi],
			ArchetypeID:  g.pickArchetype(),
			Placement:    place + 1,
			Wins:         g.rng.Intn(rounds + 2),
			Losses:       g.rng.Intn(3),
		}
		if g.rng.Float64() < unrankedResultShare {
			res.Placement = 0
		}
		if err := g.repo.InsertResult(ctx, res); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) pickArchetype() int64 {
	if g.rng.Float64() < unknownDeckShare {
		return g.unknownID
	}
	return g.archIDs[g.rng.Intn(len(g.archIDs))]
}
