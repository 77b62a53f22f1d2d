// Command seeder generates a synthetic match log, writes it as CSV and can
// post it to a running snapstats service.
package main

import (
	"bytes"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/snapstats/analyzer/internal/loader"
	"github.com/snapstats/analyzer/internal/logic"
	"github.com/snapstats/analyzer/internal/models"
)

var (
	locations = []string{"sanctum", "atlantis", "wakanda", "klyntar", "barsinister", "kamartaj", "asgard", "nidavellir", "xandar", "ego"}
	cards     = []string{"hulk", "ironman", "thanos", "wolfsbane", "sera", "galactus", "dracula", "mystique", "shangchi", "ka-zar", "blue-marvel", "odin"}
	myDecks   = []string{"ongoing", "discard", "destroy", "move"}
	oppDecks  = []string{"thanos", "zoo", "control", "bounce", "discard"}
)

type options struct {
	games int
	seed  uint64
	out   string
	post  string
}

func main() {
	o := &options{}
	cmd := &cobra.Command{
		Use:          "seeder",
		Short:        "Generate a synthetic match log",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(o, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVarP(&o.games, "games", "n", 200, "Number of matches to generate")
	cmd.Flags().Uint64Var(&o.seed, "seed", uint64(time.Now().UnixNano()), "Random seed")
	cmd.Flags().StringVarP(&o.out, "out", "o", "", "Write the CSV here instead of stdout")
	cmd.Flags().StringVar(&o.post, "post", "", "POST the log to this analyze URL, e.g. http://localhost:8080/api/v1/analyze")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(o *options, stdout io.Writer) error {
	records := logic.Denormalize(generate(rand.New(rand.NewPCG(o.seed, o.seed)), o.games), ",")

	var buf bytes.Buffer
	if err := loader.WriteCSV(&buf, records); err != nil {
		return err
	}

	if o.post != "" {
		return post(o.post, buf.Bytes(), stdout)
	}
	if o.out != "" {
		return os.WriteFile(o.out, buf.Bytes(), 0o644)
	}
	_, err := stdout.Write(buf.Bytes())
	return err
}

// generate builds n matches. Some records reveal fewer than three locations
// and every record has between zero and four opponent cards.
func generate(r *rand.Rand, n int) *models.Dataset {
	ds := &models.Dataset{Padding: models.DefaultPadding, CardWidth: 4}
	for i := 0; i < n; i++ {
		rec := models.MatchRecord{
			MyDeck:           myDecks[r.IntN(len(myDecks))],
			OpponentDeck:     oppDecks[r.IntN(len(oppDecks))],
			ArchetypeCertain: r.IntN(3) > 0,
			BotBehavior:      models.BotBehavior(r.IntN(3)),
		}

		revealed := 1 + r.IntN(models.LocationSlots)
		perm := r.Perm(len(locations))
		for s := range rec.Locations {
			rec.Locations[s] = ds.Padding
			if s < revealed {
				rec.Locations[s] = locations[perm[s]]
			}
		}

		seen := r.IntN(ds.CardWidth + 1)
		perm = r.Perm(len(cards))
		rec.Cards = make([]string, ds.CardWidth)
		for c := range rec.Cards {
			rec.Cards[c] = ds.Padding
			if c < seen {
				rec.Cards[c] = cards[perm[c]]
			}
		}

		rec.Outcome, rec.Cubes = result(r)
		ds.Records = append(ds.Records, rec)
	}
	return ds
}

func result(r *rand.Rand) (models.Outcome, int) {
	stakes := []int{1, 2, 4, 8}
	cubes := stakes[r.IntN(len(stakes))]
	half := max(1, cubes/2)
	switch r.IntN(4) {
	case 0:
		return models.OutcomeRetreat, -half
	case 1:
		return models.OutcomeOpponentRetreat, half
	default:
		if r.IntN(2) == 0 {
			return models.OutcomeResolve, -cubes
		}
		return models.OutcomeResolve, cubes
	}
}

func post(url string, body []byte, stdout io.Writer) error {
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Post(url, "text/csv", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Fprintf(stdout, "Status: %s\n", resp.Status)
	fmt.Fprintf(stdout, "Response: %s\n", string(respBody))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("analyze returned %s", resp.Status)
	}
	return nil
}
