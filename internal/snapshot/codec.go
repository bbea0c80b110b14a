// Package snapshot encodes the whole store as one document and decides what
// happens at startup when that document is missing or unreadable.
//
// The document is a JSON string whose content is itself JSON:
//
//	"{\"films\":{\"1\":{\"name\":...}},\"filmsAutoIncrement\":2,...}"
//
// Seance start times use the HH:mm|dd.MM.yyyy layout in the configured zone.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"cinemacore/internal/infra/persistence/memory"
	"cinemacore/pkg/domain"
)

// ErrCorrupt reports a document that cannot be decoded.
var ErrCorrupt = errors.New("snapshot corrupt")

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("snapshot: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("snapshot: zstd decoder initialization failed: " + err.Error())
	}
}

type filmData struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Duration    int    `json:"duration"`
}

type seanceData struct {
	FilmID    int    `json:"filmId"`
	StartTime string `json:"startTime"`
}

type ticketData struct {
	SeanceID  int  `json:"seanceId"`
	Row       int  `json:"row"`
	Seat      int  `json:"seat"`
	SeatTaken bool `json:"seatTaken,omitempty"`
}

type userData struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"isAdmin"`
}

type document struct {
	Films                map[int]filmData   `json:"films"`
	Seances              map[int]seanceData `json:"seances"`
	Tickets              map[int]ticketData `json:"tickets"`
	Users                map[int]userData   `json:"users"`
	FilmsAutoIncrement   int                `json:"filmsAutoIncrement"`
	SeancesAutoIncrement int                `json:"seancesAutoIncrement"`
	TicketsAutoIncrement int                `json:"ticketsAutoIncrement"`
	UsersAutoIncrement   int                `json:"usersAutoIncrement"`
}

// Codec converts between store snapshots and documents.
type Codec struct {
	// Location interprets the zone-less start times. Nil means time.Local.
	Location *time.Location
	// Compress frames encoded documents with zstd. Decode accepts both forms.
	Compress bool
}

func (c Codec) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

// Encode renders s as a document.
func (c Codec) Encode(s memory.Snapshot) ([]byte, error) {
	loc := c.location()
	doc := document{
		Films:                make(map[int]filmData, len(s.Films)),
		Seances:              make(map[int]seanceData, len(s.Seances)),
		Tickets:              make(map[int]ticketData, len(s.Tickets)),
		Users:                make(map[int]userData, len(s.Users)),
		FilmsAutoIncrement:   s.FilmsAutoIncrement,
		SeancesAutoIncrement: s.SeancesAutoIncrement,
		TicketsAutoIncrement: s.TicketsAutoIncrement,
		UsersAutoIncrement:   s.UsersAutoIncrement,
	}
	for id, f := range s.Films {
		doc.Films[id] = filmData{Name: f.Name, Description: f.Description, Duration: f.Duration}
	}
	for id, se := range s.Seances {
		doc.Seances[id] = seanceData{FilmID: se.FilmID, StartTime: domain.FormatDateTime(se.StartTime.In(loc))}
	}
	for id, t := range s.Tickets {
		doc.Tickets[id] = ticketData{SeanceID: t.SeanceID, Row: t.Row, Seat: t.Seat, SeatTaken: t.SeatTaken}
	}
	for id, u := range s.Users {
		doc.Users[id] = userData{Login: u.Login, Password: u.PasswordHash, IsAdmin: u.IsAdmin}
	}

	inner, err := marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	outer, err := marshal(string(inner))
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	if c.Compress {
		return zstdEncoder.EncodeAll(outer, nil), nil
	}
	return outer, nil
}

// Decode parses a document. Failures wrap ErrCorrupt.
func (c Codec) Decode(data []byte) (memory.Snapshot, error) {
	if bytes.HasPrefix(data, zstdMagic) {
		plain, err := zstdDecoder.DecodeAll(data, nil)
		if err != nil {
			return memory.Snapshot{}, fmt.Errorf("%w: zstd: %v", ErrCorrupt, err)
		}
		data = plain
	}
	var inner string
	if err := json.Unmarshal(data, &inner); err != nil {
		return memory.Snapshot{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	var doc document
	if err := json.Unmarshal([]byte(inner), &doc); err != nil {
		return memory.Snapshot{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	loc := c.location()
	s := memory.Snapshot{
		Films:                make(map[int]domain.Film, len(doc.Films)),
		Seances:              make(map[int]domain.Seance, len(doc.Seances)),
		Tickets:              make(map[int]domain.Ticket, len(doc.Tickets)),
		Users:                make(map[int]domain.User, len(doc.Users)),
		FilmsAutoIncrement:   doc.FilmsAutoIncrement,
		SeancesAutoIncrement: doc.SeancesAutoIncrement,
		TicketsAutoIncrement: doc.TicketsAutoIncrement,
		UsersAutoIncrement:   doc.UsersAutoIncrement,
	}
	for id, f := range doc.Films {
		s.Films[id] = domain.Film{ID: id, Name: f.Name, Description: f.Description, Duration: f.Duration}
	}
	for id, se := range doc.Seances {
		start, err := domain.ParseDateTime(se.StartTime, loc)
		if err != nil {
			return memory.Snapshot{}, fmt.Errorf("%w: seance %d: %v", ErrCorrupt, id, err)
		}
		s.Seances[id] = domain.Seance{ID: id, FilmID: se.FilmID, StartTime: start}
	}
	for id, t := range doc.Tickets {
		s.Tickets[id] = domain.Ticket{ID: id, SeanceID: t.SeanceID, Row: t.Row, Seat: t.Seat, SeatTaken: t.SeatTaken}
	}
	for id, u := range doc.Users {
		s.Users[id] = domain.User{ID: id, Login: u.Login, PasswordHash: u.Password, IsAdmin: u.IsAdmin}
	}
	return s, nil
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
