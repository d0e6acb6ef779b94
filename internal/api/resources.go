package api

import (
	"strconv"

	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/domain"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/jsonapi"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/store"
)

// apiBasePath prefixes every resource URL.
const apiBasePath = "/api/v1"

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// appointmentResource builds the JSON:API resource for an appointment.
// Relationship linkage for category and author is always present;
// comments linkage appears only when the comments were loaded, so a
// plain fetch doesn't imply an empty comment list.
func appointmentResource(appt *domain.Appointment, related *store.AppointmentRelated, spec *jsonapi.QuerySpec) jsonapi.ResourceObject {
	id := formatID(appt.ID)

	attrs := map[string]any{
		"date":       appt.Date,
		"start_time": appt.StartTime,
		"email":      appt.Email,
	}

	res := jsonapi.NewResource(jsonapi.Appointments, id, attrs, spec)
	res.Links = map[string]string{"self": apiBasePath + "/appointments/" + id}

	res.Relationships = map[string]jsonapi.Relationship{
		"category": {Data: jsonapi.ResourceIdentifier{
			Type: jsonapi.Categories.Name,
			ID:   formatID(appt.CategoryID),
		}},
		"author": {Data: authorLinkage(appt)},
	}

	if related != nil {
		if comments, ok := related.Comments[appt.ID]; ok {
			res.Relationships["comments"] = jsonapi.Relationship{Data: commentLinkage(comments)}
		}
	}

	return res
}

// authorLinkage returns the author identifier or nil for anonymous
// bookings; the relationship serializes as data: null.
func authorLinkage(appt *domain.Appointment) any {
	if !appt.AuthorID.Valid {
		return nil
	}
	return jsonapi.ResourceIdentifier{Type: jsonapi.Authors.Name, ID: appt.AuthorID.UUID.String()}
}

func commentLinkage(comments []*domain.Comment) []jsonapi.ResourceIdentifier {
	ids := make([]jsonapi.ResourceIdentifier, len(comments))
	for i, comment := range comments {
		ids[i] = jsonapi.ResourceIdentifier{Type: jsonapi.Comments.Name, ID: formatID(comment.ID)}
	}
	return ids
}

// appointmentIncluded builds the included resources for one
// appointment, honoring the spec's include list and sparse fieldsets.
func appointmentIncluded(appt *domain.Appointment, related *store.AppointmentRelated, spec *jsonapi.QuerySpec) []jsonapi.ResourceObject {
	if related == nil || spec == nil {
		return nil
	}

	var included []jsonapi.ResourceObject
	for _, include := range spec.Includes {
		switch include {
		case "category":
			if cat, ok := related.Categories[appt.CategoryID]; ok {
				included = append(included, categoryResource(cat, spec))
			}
		case "author":
			if appt.AuthorID.Valid {
				if user, ok := related.Authors[appt.AuthorID.UUID]; ok {
					included = append(included, authorResource(user, spec))
				}
			}
		case "comments":
			for _, comment := range related.Comments[appt.ID] {
				included = append(included, commentResource(comment, spec))
			}
		}
	}
	return included
}

func categoryResource(cat *domain.Category, spec *jsonapi.QuerySpec) jsonapi.ResourceObject {
	id := formatID(cat.ID)
	res := jsonapi.NewResource(jsonapi.Categories, id, map[string]any{"name": cat.Name}, spec)
	res.Links = map[string]string{"self": apiBasePath + "/categories/" + id}
	return res
}

func authorResource(user *domain.User, spec *jsonapi.QuerySpec) jsonapi.ResourceObject {
	id := user.ID.String()
	attrs := map[string]any{
		"name":  user.Name,
		"email": user.Email,
	}
	res := jsonapi.NewResource(jsonapi.Authors, id, attrs, spec)
	res.Links = map[string]string{"self": apiBasePath + "/authors/" + id}
	return res
}

func commentResource(comment *domain.Comment, spec *jsonapi.QuerySpec) jsonapi.ResourceObject {
	id := formatID(comment.ID)
	res := jsonapi.NewResource(jsonapi.Comments, id, map[string]any{"body": comment.Body}, spec)
	res.Links = map[string]string{"self": apiBasePath + "/comments/" + id}
	res.Relationships = map[string]jsonapi.Relationship{
		"appointment": {Data: jsonapi.ResourceIdentifier{
			Type: jsonapi.Appointments.Name,
			ID:   formatID(comment.AppointmentID),
		}},
		"author": {Data: jsonapi.ResourceIdentifier{
			Type: jsonapi.Authors.Name,
			ID:   comment.AuthorID.String(),
		}},
	}
	return res
}

// commentIncluded builds the included resources for one comment.
func commentIncluded(comment *domain.Comment, related *store.CommentRelated, spec *jsonapi.QuerySpec) []jsonapi.ResourceObject {
	if related == nil || spec == nil {
		return nil
	}

	var included []jsonapi.ResourceObject
	for _, include := range spec.Includes {
		switch include {
		case "appointment":
			if appt, ok := related.Appointments[comment.AppointmentID]; ok {
				included = append(included, appointmentResource(appt, nil, spec))
			}
		case "author":
			if user, ok := related.Authors[comment.AuthorID]; ok {
				included = append(included, authorResource(user, spec))
			}
		}
	}
	return included
}
