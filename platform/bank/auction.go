package bank

import (
	"sync"

	uuid "github.com/satori/go.uuid"
	log "github.com/sirupsen/logrus"

	"github.com/boardwalk-games/boardwalk-backend/app/models"
	"github.com/boardwalk-games/boardwalk-backend/pkg/gameerr"
	"github.com/boardwalk-games/boardwalk-backend/platform/store"
)

// Auction is live bidding state for one property. Short-lived, kept in
// memory; the settlement writes through the store.
type Auction struct {
	Id            string `json:"id"`
	Game_id       string `json:"game_id"`
	PropertyId    string `json:"property_id"`
	SellerId      string `json:"seller_id"` // empty when the bank auctions an unowned space
	MinimumBid    int    `json:"minimum_bid"`
	CurrentBid    int    `json:"current_bid"`
	CurrentBidder string `json:"current_bidder"`
	Open          bool   `json:"open"`
}

// AuctionHouse tracks open auctions per game.
type AuctionHouse struct {
	mu       sync.Mutex
	auctions map[string]*Auction
}

func NewAuctionHouse() *AuctionHouse {
	return &AuctionHouse{auctions: make(map[string]*Auction)}
}

// CreateAuction opens bidding on a property at a minimum bid.
func (h *AuctionHouse) CreateAuction(gameID, propertyID, sellerID string, minimumBid int) *Auction {
	h.mu.Lock()
	defer h.mu.Unlock()
	a := &Auction{
		Id:         uuid.NewV4().String(),
		Game_id:    gameID,
		PropertyId: propertyID,
		SellerId:   sellerID,
		MinimumBid: minimumBid,
		Open:       true,
	}
	h.auctions[a.Id] = a
	log.WithFields(log.Fields{"game": gameID, "property": propertyID, "min": minimumBid}).Info("auction opened")
	return a
}

func (h *AuctionHouse) Get(id string) (*Auction, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	a, ok := h.auctions[id]
	if !ok {
		return nil, gameerr.ErrNotFound
	}
	return a, nil
}

// OpenForProperty returns the open auction on a property, if any.
func (h *AuctionHouse) OpenForProperty(propertyID string) *Auction {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, a := range h.auctions {
		if a.PropertyId == propertyID && a.Open {
			return a
		}
	}
	return nil
}

// PlaceBid records a bid if it beats the floor and the current high bid.
func (h *AuctionHouse) PlaceBid(auctionID, playerID string, amount int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	a, ok := h.auctions[auctionID]
	if !ok {
		return gameerr.ErrNotFound
	}
	if !a.Open {
		return gameerr.ErrInvalidState
	}
	if amount < a.MinimumBid || amount <= a.CurrentBid {
		return gameerr.ErrInvalidState
	}
	a.CurrentBid = amount
	a.CurrentBidder = playerID
	return nil
}

// Settle closes the auction. With a winning bid the winner pays (the seller,
// or the bank for unowned lots) and takes the deed inside one unit of work.
func (h *AuctionHouse) Settle(auctionID string, b *Bank, lap int) (*Auction, error) {
	h.mu.Lock()
	a, ok := h.auctions[auctionID]
	if !ok {
		h.mu.Unlock()
		return nil, gameerr.ErrNotFound
	}
	if !a.Open {
		h.mu.Unlock()
		return nil, gameerr.ErrInvalidState
	}
	a.Open = false
	delete(h.auctions, auctionID)
	h.mu.Unlock()

	if a.CurrentBidder == "" {
		return a, nil // no bids, deed stays put
	}

	err := b.Store.InTx(func(st store.Store) error {
		txBank := New(st)
		var r Result
		if a.SellerId == "" {
			r = txBank.PlayerPaysBank(a.Game_id, a.CurrentBidder, a.CurrentBid, models.TxAuction, a.PropertyId, lap)
		} else {
			r = txBank.PlayerPaysPlayer(a.Game_id, a.CurrentBidder, a.SellerId, a.CurrentBid, models.TxAuction, a.PropertyId, lap)
		}
		if !r.Success {
			return gameerr.ErrInsufficientFunds
		}
		property, err := st.GetProperty(a.PropertyId)
		if err != nil {
			return err
		}
		property.OwnerId = a.CurrentBidder
		return st.SaveProperty(property)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}
