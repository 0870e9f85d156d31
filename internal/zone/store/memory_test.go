package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"geoattend/internal/zone/models"
	id "geoattend/pkg/domain"
	"geoattend/pkg/platform/sentinel"
)

type ZoneStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *ZoneStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestZoneStoreSuite(t *testing.T) {
	suite.Run(t, new(ZoneStoreSuite))
}

func (s *ZoneStoreSuite) newZone(name string) *models.GeoZone {
	return &models.GeoZone{
		ID:           id.NewZoneID(),
		Name:         name,
		Latitude:     -6.2,
		Longitude:    106.8,
		RadiusMeters: 100,
		Active:       true,
		CreatedAt:    time.Now(),
	}
}

func (s *ZoneStoreSuite) TestCreationAndLookups() {
	s.Run("creates and finds zone by ID", func() {
		zone := s.newZone("Head Office")
		s.Require().NoError(s.store.Create(s.ctx, zone))

		found, err := s.store.FindByID(s.ctx, zone.ID)
		s.Require().NoError(err)
		s.Equal(zone.Name, found.Name)
		s.Equal(zone.RadiusMeters, found.RadiusMeters)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.FindByID(s.ctx, id.NewZoneID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *ZoneStoreSuite) TestActiveFiltering() {
	s.Run("ListActive excludes deactivated zones without deleting them", func() {
		active := s.newZone("Warehouse")
		inactive := s.newZone("Old Site")
		s.Require().NoError(s.store.Create(s.ctx, active))
		s.Require().NoError(s.store.Create(s.ctx, inactive))
		s.Require().NoError(s.store.SetActive(s.ctx, inactive.ID, false))

		activeZones, err := s.store.ListActive(s.ctx)
		s.Require().NoError(err)
		s.Len(activeZones, 1)
		s.Equal(active.ID, activeZones[0].ID)

		// Still present in the full list and retrievable.
		all, err := s.store.List(s.ctx)
		s.Require().NoError(err)
		s.Len(all, 2)

		found, err := s.store.FindByID(s.ctx, inactive.ID)
		s.Require().NoError(err)
		s.False(found.Active)
	})

	s.Run("reactivation restores membership consideration", func() {
		zone := s.newZone("Branch")
		s.Require().NoError(s.store.Create(s.ctx, zone))
		s.Require().NoError(s.store.SetActive(s.ctx, zone.ID, false))
		s.Require().NoError(s.store.SetActive(s.ctx, zone.ID, true))

		activeZones, err := s.store.ListActive(s.ctx)
		s.Require().NoError(err)

		var ids []id.ZoneID
		for _, z := range activeZones {
			ids = append(ids, z.ID)
		}
		s.Contains(ids, zone.ID)
	})
}

func (s *ZoneStoreSuite) TestMutations() {
	s.Run("update persists new fields", func() {
		zone := s.newZone("Site A")
		s.Require().NoError(s.store.Create(s.ctx, zone))

		zone.RadiusMeters = 250
		zone.Name = "Site A (extended)"
		s.Require().NoError(s.store.Update(s.ctx, zone))

		found, err := s.store.FindByID(s.ctx, zone.ID)
		s.Require().NoError(err)
		s.Equal(250, found.RadiusMeters)
		s.Equal("Site A (extended)", found.Name)
	})

	s.Run("delete removes the zone permanently", func() {
		zone := s.newZone("Temp Site")
		s.Require().NoError(s.store.Create(s.ctx, zone))
		s.Require().NoError(s.store.Delete(s.ctx, zone.ID))

		_, err := s.store.FindByID(s.ctx, zone.ID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("mutating a missing zone returns ErrNotFound", func() {
		s.ErrorIs(s.store.Update(s.ctx, s.newZone("ghost")), sentinel.ErrNotFound)
		s.ErrorIs(s.store.Delete(s.ctx, id.NewZoneID()), sentinel.ErrNotFound)
		s.ErrorIs(s.store.SetActive(s.ctx, id.NewZoneID(), false), sentinel.ErrNotFound)
	})
}
