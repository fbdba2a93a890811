package api

import (
	"net/http"
	"strconv"
	"strings"

	"shareit/internal/apperr"
	"shareit/internal/models"
)

// Users

func (s *HTTPServer) createUser(w http.ResponseWriter, r *http.Request) {
	var in UserInput
	if err := decodeJSON(r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	user := &models.User{}
	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Email != nil {
		user.Email = *in.Email
	}

	created, err := s.svc.Users.CreateUser(r.Context(), user)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserDTO(created))
}

func (s *HTTPServer) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.svc.Users.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTOs(users))
}

func (s *HTTPServer) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	user, err := s.svc.Users.GetUser(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(user))
}

func (s *HTTPServer) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var in UserInput
	if err := decodeJSON(r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	user, err := s.svc.Users.UpdateUser(r.Context(), id, models.UserPatch{Name: in.Name, Email: in.Email})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(user))
}

func (s *HTTPServer) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	user, err := s.svc.Users.DeleteUser(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(user))
}

// Items

func (s *HTTPServer) createItem(w http.ResponseWriter, r *http.Request) {
	ownerID, err := UserIDFromHeader(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var in ItemInput
	if err := decodeJSON(r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if in.Available == nil {
		writeServiceError(w, r, apperr.BadRequestf("item availability is required"))
		return
	}

	item := &models.Item{Available: *in.Available, RequestID: in.RequestID}
	if in.Name != nil {
		item.Name = *in.Name
	}
	if in.Description != nil {
		item.Description = *in.Description
	}

	created, err := s.svc.Items.CreateItem(r.Context(), item, ownerID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toItemDTO(created))
}

func (s *HTTPServer) getItem(w http.ResponseWriter, r *http.Request) {
	viewerID, err := UserIDFromHeader(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	itemID, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	details, err := s.svc.Items.GetItemForViewer(r.Context(), itemID, viewerID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDetailsDTO(details))
}

func (s *HTTPServer) listOwnerItems(w http.ResponseWriter, r *http.Request) {
	ownerID, err := UserIDFromHeader(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	page, err := pageFromQuery(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	details, err := s.svc.Items.ListOwnerItems(r.Context(), ownerID, page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDetailsDTOs(details))
}

func (s *HTTPServer) updateItem(w http.ResponseWriter, r *http.Request) {
	ownerID, err := UserIDFromHeader(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	itemID, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var in ItemInput
	if err := decodeJSON(r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}

	item, err := s.svc.Items.UpdateItem(r.Context(), itemID, ownerID, models.ItemPatch{
		Name:        in.Name,
		Description: in.Description,
		Available:   in.Available,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDTO(item))
}

func (s *HTTPServer) searchItems(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	items, err := s.svc.Items.SearchItems(r.Context(), r.URL.Query().Get("text"), page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDTOs(items))
}

func (s *HTTPServer) createComment(w http.ResponseWriter, r *http.Request) {
	authorID, err := UserIDFromHeader(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	itemID, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var in CommentInput
	if err := decodeJSON(r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}

	comment, err := s.svc.Items.CreateComment(r.Context(), itemID, authorID, in.Text)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommentDTO(comment))
}

// Bookings

func (s *HTTPServer) createBooking(w http.ResponseWriter, r *http.Request) {
	bookerID, err := UserIDFromHeader(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var in BookingInput
	if err := decodeJSON(r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if in.Start == nil || in.End == nil {
		writeServiceError(w, r, apperr.BadRequestf("booking start and end are required"))
		return
	}

	booking, err := s.svc.Bookings.CreateBooking(r.Context(), models.BookingInput{
		ItemID: in.ItemID,
		Start:  in.Start.Time(),
		End:    in.End.Time(),
	}, bookerID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBookingDTO(booking))
}

func (s *HTTPServer) approveBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromHeader(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	bookingID, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	approved, err := strconv.ParseBool(strings.TrimSpace(r.URL.Query().Get("approved")))
	if err != nil {
		writeServiceError(w, r, apperr.BadRequestf("parameter approved must be true or false"))
		return
	}

	booking, err := s.svc.Bookings.ApproveBooking(r.Context(), bookingID, userID, approved)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingDTO(booking))
}

func (s *HTTPServer) getBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromHeader(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	bookingID, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	booking, err := s.svc.Bookings.GetBooking(r.Context(), bookingID, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingDTO(booking))
}

// bookingListParams reads the acting user, state and page shared by both listings.
func bookingListParams(r *http.Request) (int64, models.State, models.Page, error) {
	userID, err := UserIDFromHeader(r)
	if err != nil {
		return 0, 0, models.Page{}, err
	}
	state, err := models.ParseState(r.URL.Query().Get("state"))
	if err != nil {
		return 0, 0, models.Page{}, err
	}
	page, err := pageFromQuery(r)
	if err != nil {
		return 0, 0, models.Page{}, err
	}
	return userID, state, page, nil
}

func (s *HTTPServer) listUserBookings(w http.ResponseWriter, r *http.Request) {
	userID, state, page, err := bookingListParams(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	bookings, err := s.svc.Bookings.ListByUser(r.Context(), userID, state, page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingDTOs(bookings))
}

func (s *HTTPServer) listOwnerBookings(w http.ResponseWriter, r *http.Request) {
	ownerID, state, page, err := bookingListParams(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	bookings, err := s.svc.Bookings.ListByOwner(r.Context(), ownerID, state, page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingDTOs(bookings))
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *HTTPServer) exportOwnerBookings(w http.ResponseWriter, r *http.Request) {
	ownerID, err := UserIDFromHeader(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	state, err := models.ParseState(r.URL.Query().Get("state"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if s.svc.Export == nil {
		writeError(w, http.StatusNotImplemented, "export is not configured")
		return
	}

	data, err := s.svc.Export.ExportOwnerBookings(r.Context(), ownerID, state)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", "attachment; filename=\"bookings_"+strconv.FormatInt(ownerID, 10)+".xlsx\"")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Requests

func (s *HTTPServer) createRequest(w http.ResponseWriter, r *http.Request) {
	requesterID, err := UserIDFromHeader(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var in RequestInput
	if err := decodeJSON(r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	req, err := s.svc.Requests.CreateRequest(r.Context(), in.Description, requesterID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRequestDTO(req))
}

func (s *HTTPServer) getRequest(w http.ResponseWriter, r *http.Request) {
	viewerID, err := UserIDFromHeader(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	requestID, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	req, err := s.svc.Requests.GetRequest(r.Context(), requestID, viewerID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(req))
}

func (s *HTTPServer) listOwnRequests(w http.ResponseWriter, r *http.Request) {
	requesterID, err := UserIDFromHeader(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	reqs, err := s.svc.Requests.ListOwnRequests(r.Context(), requesterID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(reqs))
}

func (s *HTTPServer) listOtherRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromHeader(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	page, err := pageFromQuery(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	reqs, err := s.svc.Requests.ListOtherRequests(r.Context(), userID, page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(reqs))
}
