package model

import "time"

// Turf represents a sports ground listed on the platform.  A turf
// belongs to one owner, offers one or more sports and carries a
// base price that applies to any slot for which no pricing rule
// matches.  Turfs become publicly bookable only after an admin
// verifies them.  This struct corresponds to a row in the
// `turfs` table.
//
// Fields:
//  ID             – primary key identifier.
//  OwnerID        – user ID of the turf owner.
//  Name           – unique turf name per owner.
//  Location       – free-form address or area description.
//  Description    – optional longer description of the facilities.
//  BasePriceCents – fallback slot price in cents when no rule matches.
//  IsVerified     – whether an admin has approved the listing.
//  CreatedAt      – timestamp when the turf was created.
//  UpdatedAt      – timestamp of last update.
type Turf struct {
    ID             uint64    // turfs.id
    OwnerID        uint64    // turfs.owner_id
    Name           string    // turfs.name
    Location       string    // turfs.location
    Description    *string   // turfs.description (nullable)
    BasePriceCents uint32    // turfs.base_price_cents
    IsVerified     bool      // turfs.is_verified
    CreatedAt      time.Time // turfs.created_at
    UpdatedAt      time.Time // turfs.updated_at
}

// TurfSport links a turf to a sport it offers.  The sports offered
// by a turf form a set; each row in `turf_sports` is one element
// of that set.  Sport identifiers are lowercase strings such as
// "football", "cricket" or "badminton".
//
// Fields:
//  TurfID – turf offering the sport.
//  Sport  – sport identifier.
type TurfSport struct {
    TurfID uint64 // turf_sports.turf_id
    Sport  string // turf_sports.sport
}
