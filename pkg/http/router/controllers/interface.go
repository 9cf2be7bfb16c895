package controllers

import (
	"context"

	"github.com/lintang-b-s/Navisafe/pkg/concurrent"
	"github.com/lintang-b-s/Navisafe/pkg/datastructure"
	"github.com/lintang-b-s/Navisafe/pkg/navigation"
	"github.com/lintang-b-s/Navisafe/pkg/spatialindex"
)

type NavigationService interface {
	CreateSession() *navigation.Session
	GetSession(id string) (*navigation.Session, error)
	DeleteSession(id string) error
	StartNavigation(id string) (*concurrent.Future, error)
	SetQuery(id, text string) (*concurrent.Future, error)
}

type PlaceService interface {
	Search(ctx context.Context, query string) ([]datastructure.Place, error)
	Nearby(lat, lon, radius float64, limit int) ([]spatialindex.NearbyPlace, error)
}
