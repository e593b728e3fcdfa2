package identity

import (
	"context"
	"testing"

	"github.com/mangodeliveries/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBans struct {
	banned map[string]bool
}

func (f *fakeBans) IsBanned(_ context.Context, name string) (bool, error) {
	return f.banned[name], nil
}
func (f *fakeBans) Ban(_ context.Context, name string) error   { f.banned[name] = true; return nil }
func (f *fakeBans) Unban(_ context.Context, name string) error { delete(f.banned, name); return nil }
func (f *fakeBans) Banned(_ context.Context) ([]BanEntry, error) {
	entries := make([]BanEntry, 0, len(f.banned))
	for name := range f.banned {
		entries = append(entries, BanEntry{CharacterName: name, Allowed: false})
	}
	return entries, nil
}

type fakeAllows struct {
	allowed map[SubjectKind]map[string]bool
}

func (f *fakeAllows) IsAllowed(_ context.Context, kind SubjectKind, name string) (bool, error) {
	return f.allowed[kind][name], nil
}
func (f *fakeAllows) Allow(_ context.Context, kind SubjectKind, name string) error {
	if f.allowed[kind] == nil {
		f.allowed[kind] = map[string]bool{}
	}
	f.allowed[kind][name] = true
	return nil
}
func (f *fakeAllows) Disallow(_ context.Context, kind SubjectKind, name string) error {
	delete(f.allowed[kind], name)
	return nil
}
func (f *fakeAllows) Allowed(_ context.Context, kind SubjectKind) ([]AllowEntry, error) {
	entries := make([]AllowEntry, 0)
	for name := range f.allowed[kind] {
		entries = append(entries, AllowEntry{SubjectName: name, Kind: kind, Allowed: true})
	}
	return entries, nil
}

type fakeCharacters struct {
	byToken map[string]*Character
}

func (f *fakeCharacters) Save(_ context.Context, _ *Character) error { return nil }
func (f *fakeCharacters) FindByID(_ context.Context, _ int64) (*Character, error) {
	return nil, shared.ErrNotFound
}
func (f *fakeCharacters) FindByToken(_ context.Context, token string) (*Character, error) {
	if c, ok := f.byToken[token]; ok {
		return c, nil
	}
	return nil, shared.ErrNotFound
}
func (f *fakeCharacters) FindByName(_ context.Context, _ string) (*Character, error) {
	return nil, shared.ErrNotFound
}
func (f *fakeCharacters) SetFreighter(_ context.Context, _ string, _ bool) error { return nil }
func (f *fakeCharacters) Freighters(_ context.Context) ([]Character, error)      { return nil, nil }

func newTestGate() (*Gate, *fakeBans, *fakeAllows, *fakeCharacters) {
	bans := &fakeBans{banned: map[string]bool{}}
	allows := &fakeAllows{allowed: map[SubjectKind]map[string]bool{
		SubjectCorporation: {},
		SubjectAlliance:    {},
	}}
	characters := &fakeCharacters{byToken: map[string]*Character{}}
	return NewGate(characters, bans, allows), bans, allows, characters
}

func strPtr(s string) *string { return &s }

func TestGate_IsAuthorized(t *testing.T) {
	tests := []struct {
		name         string
		character    *Character
		banned       bool
		corpAllowed  bool
		allianceName *string
		allianceOK   bool
		want         bool
	}{
		{name: "nil identity", character: nil, want: false},
		{
			name:      "no grants at all",
			character: &Character{CharacterName: "Pilot", CorporationName: "Corp"},
			want:      false,
		},
		{
			name:        "corporation whitelisted",
			character:   &Character{CharacterName: "Pilot", CorporationName: "Corp"},
			corpAllowed: true,
			want:        true,
		},
		{
			name:         "alliance whitelisted",
			character:    &Character{CharacterName: "Pilot", CorporationName: "Corp", AllianceName: strPtr("Pact")},
			allianceName: strPtr("Pact"),
			allianceOK:   true,
			want:         true,
		},
		{
			name:      "director flag",
			character: &Character{CharacterName: "Boss", CorporationName: "Corp", Director: true},
			want:      true,
		},
		{
			name:      "freighter flag",
			character: &Character{CharacterName: "Hauler", CorporationName: "Corp", Freighter: true},
			want:      true,
		},
		{
			name:        "ban vetoes corporation whitelist",
			character:   &Character{CharacterName: "Pilot", CorporationName: "Corp"},
			banned:      true,
			corpAllowed: true,
			want:        false,
		},
		{
			name:      "ban vetoes director flag",
			character: &Character{CharacterName: "Boss", CorporationName: "Corp", Director: true},
			banned:    true,
			want:      false,
		},
		{
			name:      "ban vetoes freighter flag",
			character: &Character{CharacterName: "Hauler", CorporationName: "Corp", Freighter: true},
			banned:    true,
			want:      false,
		},
		{
			name:         "ban vetoes everything at once",
			character:    &Character{CharacterName: "Pilot", CorporationName: "Corp", AllianceName: strPtr("Pact"), Director: true, Freighter: true},
			banned:       true,
			corpAllowed:  true,
			allianceName: strPtr("Pact"),
			allianceOK:   true,
			want:         false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate, bans, allows, _ := newTestGate()
			if tt.character != nil && tt.banned {
				bans.banned[tt.character.CharacterName] = true
			}
			if tt.character != nil && tt.corpAllowed {
				allows.allowed[SubjectCorporation][tt.character.CorporationName] = true
			}
			if tt.allianceName != nil && tt.allianceOK {
				allows.allowed[SubjectAlliance][*tt.allianceName] = true
			}

			got, err := gate.IsAuthorized(context.Background(), tt.character)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGate_RequireAuthorized(t *testing.T) {
	t.Run("nil identity reports authentication required", func(t *testing.T) {
		gate, _, _, _ := newTestGate()

		err := gate.RequireAuthorized(context.Background(), nil)

		require.Error(t, err)
		assert.True(t, shared.IsCode(err, "AUTHENTICATION_REQUIRED"))
		assert.Equal(t, AlertLoginRequired, err.Error())
	})

	t.Run("unauthorized identity reports forbidden with alert", func(t *testing.T) {
		gate, _, _, _ := newTestGate()
		character := &Character{CharacterName: "Pilot", CorporationName: "Corp"}

		err := gate.RequireAuthorized(context.Background(), character)

		require.Error(t, err)
		assert.True(t, shared.IsCode(err, "FORBIDDEN"))
		assert.Equal(t, AlertNotAllowed, err.Error())
	})

	t.Run("whitelisted identity passes", func(t *testing.T) {
		gate, _, allows, _ := newTestGate()
		allows.allowed[SubjectCorporation]["Corp"] = true
		character := &Character{CharacterName: "Pilot", CorporationName: "Corp"}

		assert.NoError(t, gate.RequireAuthorized(context.Background(), character))
	})
}

func TestGate_RequireDirector(t *testing.T) {
	gate, _, _, _ := newTestGate()

	assert.Error(t, gate.RequireDirector(nil))
	assert.Error(t, gate.RequireDirector(&Character{CharacterName: "Hauler", Freighter: true}))
	assert.NoError(t, gate.RequireDirector(&Character{CharacterName: "Boss", Director: true}))
}

func TestGate_Refresh(t *testing.T) {
	gate, _, _, characters := newTestGate()
	characters.byToken["tok"] = &Character{ID: 42, CharacterName: "Pilot"}

	t.Run("empty token is not authenticated", func(t *testing.T) {
		_, err := gate.Refresh(context.Background(), "")
		assert.True(t, shared.IsCode(err, "AUTHENTICATION_REQUIRED"))
	})

	t.Run("unknown token is not authenticated, not internal", func(t *testing.T) {
		_, err := gate.Refresh(context.Background(), "missing")
		assert.True(t, shared.IsCode(err, "AUTHENTICATION_REQUIRED"))
	})

	t.Run("known token resolves the character", func(t *testing.T) {
		character, err := gate.Refresh(context.Background(), "tok")
		require.NoError(t, err)
		assert.Equal(t, int64(42), character.ID)
	})
}
