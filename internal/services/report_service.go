package services

import (
	"context"
	"io"
	"sort"
	"strings"

	"github.com/ArowuTest/lasto-station-backend/internal/models"
	"github.com/ArowuTest/lasto-station-backend/internal/notify"
	"github.com/ArowuTest/lasto-station-backend/internal/repositories"
	"github.com/ArowuTest/lasto-station-backend/internal/utils"
	"go.uber.org/zap"
)

// ReportServiceImpl implements ReportService. Every view is recomputed
// from the stored bets on each call.
type ReportServiceImpl struct {
	bets     repositories.BetRepository
	users    repositories.UserRepository
	notifier notify.Notifier
	logger   *zap.Logger
}

var _ ReportService = (*ReportServiceImpl)(nil)

// NewReportService creates a new ReportService
func NewReportService(bets repositories.BetRepository, users repositories.UserRepository, notifier notify.Notifier, logger *zap.Logger) *ReportServiceImpl {
	return &ReportServiceImpl{bets: bets, users: users, notifier: notifier, logger: logger}
}

// Subscribe reports bet and user changes
func (s *ReportServiceImpl) Subscribe(ctx context.Context) *notify.Subscription {
	return s.notifier.Subscribe(ctx, models.CollectionBets, models.CollectionUsers)
}

// stationIndex maps station users' emails to their station label.
func (s *ReportServiceImpl) stationIndex(ctx context.Context) (map[string]string, []*models.User, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	index := make(map[string]string, len(users))
	stationUsers := make([]*models.User, 0, len(users))
	for _, u := range users {
		if u.IsAdmin || u.StationName() == "" {
			continue
		}
		index[u.Email] = u.StationName()
		stationUsers = append(stationUsers, u)
	}
	sort.SliceStable(stationUsers, func(i, j int) bool {
		return utils.StationLess(stationUsers[i].StationName(), stationUsers[j].StationName())
	})
	return index, stationUsers, nil
}

func resolveStation(index map[string]string, email string) string {
	if st, ok := index[email]; ok {
		return st
	}
	return models.UnknownStation
}

// Dashboard aggregates one date by draw time, by game and by station
func (s *ReportServiceImpl) Dashboard(ctx context.Context, date string) (*models.Dashboard, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	bets, err := s.bets.FindByDateRange(ctx, date, date)
	if err != nil {
		return nil, err
	}
	index, stationUsers, err := s.stationIndex(ctx)
	if err != nil {
		return nil, err
	}

	d := &models.Dashboard{
		Date:   date,
		ByTime: make(map[models.DrawTime]float64, len(models.DrawTimes)),
		ByGame: make(map[models.Game]float64, len(models.Games)),
	}
	for _, t := range models.DrawTimes {
		d.ByTime[t] = 0
	}
	for _, g := range models.Games {
		d.ByGame[g] = 0
	}

	perEmail := make(map[string]*models.BetTotal)
	for _, b := range bets {
		d.Total.Amount += b.Total.Amount
		d.Total.Bets += b.Total.Bets
		d.ByTime[b.DrawDate.Time] += b.Total.Amount
		for _, l := range b.Bets {
			d.ByGame[l.Game] += l.Amount
		}
		t, ok := perEmail[b.User]
		if !ok {
			t = &models.BetTotal{}
			perEmail[b.User] = t
		}
		t.Amount += b.Total.Amount
		t.Bets += b.Total.Bets
	}

	d.Stations = make([]models.StationTotal, 0, len(stationUsers)+1)
	for _, u := range stationUsers {
		card := models.StationTotal{Station: u.StationName(), Email: u.Email}
		if t, ok := perEmail[u.Email]; ok {
			card.Amount, card.Bets = t.Amount, t.Bets
		}
		d.Stations = append(d.Stations, card)
	}
	var unknown models.StationTotal
	for email, t := range perEmail {
		if _, ok := index[email]; !ok {
			unknown.Amount += t.Amount
			unknown.Bets += t.Bets
		}
	}
	if unknown.Bets > 0 {
		unknown.Station = models.UnknownStation
		d.Stations = append(d.Stations, unknown)
	}
	return d, nil
}

// StationSummary groups the bets of a date range by station
func (s *ReportServiceImpl) StationSummary(ctx context.Context, from, to string) ([]*models.StationSummary, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	bets, err := s.bets.FindByDateRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	index, _, err := s.stationIndex(ctx)
	if err != nil {
		return nil, err
	}
	return groupByStation(index, bets), nil
}

func groupByStation(index map[string]string, bets []*models.Bet) []*models.StationSummary {
	groups := make(map[string]*models.StationSummary)
	for _, b := range bets {
		st := resolveStation(index, b.User)
		g, ok := groups[st]
		if !ok {
			g = &models.StationSummary{Station: st, Bets: []*models.Bet{}}
			groups[st] = g
		}
		g.Bets = append(g.Bets, b)
		g.Total.Amount += b.Total.Amount
		g.Total.Bets += b.Total.Bets
	}
	out := make([]*models.StationSummary, 0, len(groups))
	for _, g := range groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return utils.StationLess(out[i].Station, out[j].Station) })
	return out
}

// StationBets returns one station's bets for a date range
func (s *ReportServiceImpl) StationBets(ctx context.Context, station, from, to string) (*models.StationSummary, error) {
	groups, err := s.StationSummary(ctx, from, to)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		if g.Station == station {
			return g, nil
		}
	}
	return &models.StationSummary{Station: station, Bets: []*models.Bet{}}, nil
}

// NumberTotals sums the amount wagered per game and number on a date.
// search filters numbers by substring, ignoring dashes.
func (s *ReportServiceImpl) NumberTotals(ctx context.Context, date, search string) ([]models.NumberTotal, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	bets, err := s.bets.FindByDateRange(ctx, date, date)
	if err != nil {
		return nil, err
	}
	search = strings.ReplaceAll(strings.TrimSpace(search), "-", "")

	type key struct {
		game   models.Game
		number string
	}
	totals := make(map[key]*models.NumberTotal)
	for _, b := range bets {
		for _, l := range b.Bets {
			if search != "" && !strings.Contains(strings.ReplaceAll(l.Number, "-", ""), search) {
				continue
			}
			k := key{l.Game, l.Number}
			t, ok := totals[k]
			if !ok {
				t = &models.NumberTotal{Game: l.Game, Number: l.Number}
				totals[k] = t
			}
			t.Amount += l.Amount
			t.Bets++
		}
	}

	rank := make(map[models.Game]int, len(models.Games))
	for i, g := range models.Games {
		rank[g] = i
	}
	out := make([]models.NumberTotal, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Game != out[j].Game {
			return rank[out[i].Game] < rank[out[j].Game]
		}
		return out[i].Number < out[j].Number
	})
	return out, nil
}

// Export writes the selected station's bets (every station when station is
// empty) as a spreadsheet
func (s *ReportServiceImpl) Export(ctx context.Context, w io.Writer, station, from, to, format string) error {
	switch format {
	case "", utils.FormatXLSX, utils.FormatCSV:
	default:
		return validationf("unsupported export format %q", format)
	}
	groups, err := s.StationSummary(ctx, from, to)
	if err != nil {
		return err
	}

	var rows []models.ExportRow
	for _, g := range groups {
		if station != "" && g.Station != station {
			continue
		}
		for _, b := range g.Bets {
			for _, l := range b.Bets {
				rows = append(rows, models.ExportRow{
					Station:     g.Station,
					ReferenceNo: b.ReferenceNo,
					Date:        b.DrawDate.Date,
					Time:        b.DrawDate.Time,
					Game:        l.Game,
					Number:      l.Number,
					Amount:      l.Amount,
					User:        b.User,
				})
			}
		}
	}
	s.logger.Info("export", zap.String("station", station), zap.String("from", from),
		zap.String("to", to), zap.String("format", format), zap.Int("rows", len(rows)))
	return utils.WriteBets(w, format, rows)
}
