package application

import (
	"context"
	"fmt"

	"atlassian-suite-mcp/internal/domain"
	"atlassian-suite-mcp/internal/infrastructure"
)

// TrelloHandler implements ToolHandler for Trello operations.
// The read tools are shaped for board inspection and Trello-to-Jira
// migrations; the two move tools are the only mutations.
type TrelloHandler struct {
	client *infrastructure.TrelloClient
	mapper domain.ResponseMapper
}

// NewTrelloHandler creates a new TrelloHandler instance.
func NewTrelloHandler(client *infrastructure.TrelloClient, mapper domain.ResponseMapper) *TrelloHandler {
	return &TrelloHandler{
		client: client,
		mapper: mapper,
	}
}

// Tool name constants for Trello operations
const (
	ToolTrelloGetBoards          = "trello_get_boards"
	ToolTrelloGetLists           = "trello_get_lists"
	ToolTrelloGetCards           = "trello_get_cards"
	ToolTrelloGetCard            = "trello_get_card"
	ToolTrelloMoveListToBoard    = "trello_move_list_to_board"
	ToolTrelloMoveCardToList     = "trello_move_card_to_list"
	ToolTrelloGetCardAttachments = "trello_get_card_attachments"
	ToolTrelloGetCardComments    = "trello_get_card_comments"
)

// ToolName returns the identifier for this handler.
func (h *TrelloHandler) ToolName() string {
	return "trello"
}

// ListTools returns available tools for Trello operations.
func (h *TrelloHandler) ListTools() []domain.ToolDefinition {
	return []domain.ToolDefinition{
		{
			Name:        ToolTrelloGetBoards,
			Description: "Get Trello boards for the configured member",
			InputSchema: domain.JSONSchema{
				Type:       "object",
				Properties: map[string]interface{}{},
			},
		},
		{
			Name:        ToolTrelloGetLists,
			Description: "Get lists on a Trello board",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"board_id": map[string]interface{}{
						"type":        "string",
						"description": "The board ID",
					},
				},
				Required: []string{"board_id"},
			},
		},
		{
			Name:        ToolTrelloGetCards,
			Description: "Get all cards on a Trello list",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"list_id": map[string]interface{}{
						"type":        "string",
						"description": "The list ID",
					},
				},
				Required: []string{"list_id"},
			},
		},
		{
			Name:        ToolTrelloGetCard,
			Description: "Get detailed information about a Trello card (description, labels, members, due date)",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"card_id": map[string]interface{}{
						"type":        "string",
						"description": "The card ID",
					},
				},
				Required: []string{"card_id"},
			},
		},
		{
			Name:        ToolTrelloMoveListToBoard,
			Description: "Move a Trello list to another board",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"list_id": map[string]interface{}{
						"type":        "string",
						"description": "The list ID to move",
					},
					"target_board_id": map[string]interface{}{
						"type":        "string",
						"description": "The destination board ID",
					},
				},
				Required: []string{"list_id", "target_board_id"},
			},
		},
		{
			Name:        ToolTrelloMoveCardToList,
			Description: "Move a Trello card to another list",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"card_id": map[string]interface{}{
						"type":        "string",
						"description": "The card ID to move",
					},
					"target_list_id": map[string]interface{}{
						"type":        "string",
						"description": "The destination list ID",
					},
				},
				Required: []string{"card_id", "target_list_id"},
			},
		},
		{
			Name:        ToolTrelloGetCardAttachments,
			Description: "Get attachments for a Trello card",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"card_id": map[string]interface{}{
						"type":        "string",
						"description": "The card ID",
					},
				},
				Required: []string{"card_id"},
			},
		},
		{
			Name:        ToolTrelloGetCardComments,
			Description: "Get comments for a Trello card",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"card_id": map[string]interface{}{
						"type":        "string",
						"description": "The card ID",
					},
				},
				Required: []string{"card_id"},
			},
		},
	}
}

// Handle processes an MCP tool call request for Trello operations.
func (h *TrelloHandler) Handle(ctx context.Context, req *domain.ToolRequest) (*domain.ToolResponse, error) {
	if req.Arguments == nil {
		req.Arguments = make(map[string]interface{})
	}

	switch req.Name {
	case ToolTrelloGetBoards:
		return h.handleGetBoards(ctx)
	case ToolTrelloGetLists:
		return h.handleGetLists(ctx, req.Arguments)
	case ToolTrelloGetCards:
		return h.handleGetCards(ctx, req.Arguments)
	case ToolTrelloGetCard:
		return h.handleGetCard(ctx, req.Arguments)
	case ToolTrelloMoveListToBoard:
		return h.handleMoveListToBoard(ctx, req.Arguments)
	case ToolTrelloMoveCardToList:
		return h.handleMoveCardToList(ctx, req.Arguments)
	case ToolTrelloGetCardAttachments:
		return h.handleGetCardAttachments(ctx, req.Arguments)
	case ToolTrelloGetCardComments:
		return h.handleGetCardComments(ctx, req.Arguments)
	default:
		return nil, &domain.Error{
			Code:    domain.MethodNotFound,
			Message: fmt.Sprintf("unknown Trello tool: %s", req.Name),
		}
	}
}

// handleGetBoards handles the trello_get_boards tool call.
func (h *TrelloHandler) handleGetBoards(ctx context.Context) (*domain.ToolResponse, error) {
	boards, err := h.client.GetBoards(ctx)
	if err != nil {
		return nil, h.mapper.MapError(ToolTrelloGetBoards, err)
	}

	simplified := []map[string]interface{}{}
	for _, board := range boards {
		simplified = append(simplified, map[string]interface{}{
			"id":   itemField(board, "id"),
			"name": itemField(board, "name"),
			"url":  itemField(board, "url"),
		})
	}

	return h.mapper.MapToToolResponse(map[string]interface{}{
		"boards": simplified,
		"raw":    boards,
	})
}

// handleGetLists handles the trello_get_lists tool call.
func (h *TrelloHandler) handleGetLists(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	boardID, err := getStringParam(args, "board_id", true)
	if err != nil {
		return nil, err
	}

	lists, err := h.client.GetLists(ctx, boardID)
	if err != nil {
		return nil, h.mapper.MapError(ToolTrelloGetLists, err)
	}

	simplified := []map[string]interface{}{}
	for _, list := range lists {
		simplified = append(simplified, map[string]interface{}{
			"id":      itemField(list, "id"),
			"name":    itemField(list, "name"),
			"idBoard": itemField(list, "idBoard"),
			"pos":     itemField(list, "pos"),
		})
	}

	return h.mapper.MapToToolResponse(map[string]interface{}{
		"lists": simplified,
		"raw":   lists,
	})
}

// handleGetCards handles the trello_get_cards tool call.
func (h *TrelloHandler) handleGetCards(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	listID, err := getStringParam(args, "list_id", true)
	if err != nil {
		return nil, err
	}

	cards, err := h.client.GetCardsOnList(ctx, listID)
	if err != nil {
		return nil, h.mapper.MapError(ToolTrelloGetCards, err)
	}

	simplified := []map[string]interface{}{}
	for _, card := range cards {
		simplified = append(simplified, map[string]interface{}{
			"id":       itemField(card, "id"),
			"name":     itemField(card, "name"),
			"idBoard":  itemField(card, "idBoard"),
			"idList":   itemField(card, "idList"),
			"url":      itemField(card, "url"),
			"shortUrl": itemField(card, "shortUrl"),
		})
	}

	return h.mapper.MapToToolResponse(map[string]interface{}{
		"cards": simplified,
		"raw":   cards,
	})
}

// handleGetCard handles the trello_get_card tool call.
func (h *TrelloHandler) handleGetCard(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	cardID, err := getStringParam(args, "card_id", true)
	if err != nil {
		return nil, err
	}

	data, err := h.client.GetCard(ctx, cardID)
	if err != nil {
		return nil, h.mapper.MapError(ToolTrelloGetCard, err)
	}

	summary := map[string]interface{}{
		"id":        data["id"],
		"name":      data["name"],
		"desc":      data["desc"],
		"idBoard":   data["idBoard"],
		"idList":    data["idList"],
		"url":       data["url"],
		"shortUrl":  data["shortUrl"],
		"due":       data["due"],
		"labels":    data["labels"],
		"idMembers": data["idMembers"],
		"raw":       data,
	}
	return h.mapper.MapToToolResponse(summary)
}

// handleMoveListToBoard handles the trello_move_list_to_board tool call.
func (h *TrelloHandler) handleMoveListToBoard(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	listID, err := getStringParam(args, "list_id", true)
	if err != nil {
		return nil, err
	}
	targetBoardID, err := getStringParam(args, "target_board_id", true)
	if err != nil {
		return nil, err
	}

	data, err := h.client.MoveListToBoard(ctx, listID, targetBoardID)
	if err != nil {
		return nil, h.mapper.MapError(ToolTrelloMoveListToBoard, err)
	}

	summary := map[string]interface{}{
		"id":      data["id"],
		"name":    data["name"],
		"idBoard": data["idBoard"],
		"raw":     data,
	}
	return h.mapper.MapToToolResponse(summary)
}

// handleMoveCardToList handles the trello_move_card_to_list tool call.
func (h *TrelloHandler) handleMoveCardToList(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	cardID, err := getStringParam(args, "card_id", true)
	if err != nil {
		return nil, err
	}
	targetListID, err := getStringParam(args, "target_list_id", true)
	if err != nil {
		return nil, err
	}

	data, err := h.client.MoveCardToList(ctx, cardID, targetListID)
	if err != nil {
		return nil, h.mapper.MapError(ToolTrelloMoveCardToList, err)
	}

	summary := map[string]interface{}{
		"id":      data["id"],
		"name":    data["name"],
		"idBoard": data["idBoard"],
		"idList":  data["idList"],
		"raw":     data,
	}
	return h.mapper.MapToToolResponse(summary)
}

// handleGetCardAttachments handles the trello_get_card_attachments tool call.
func (h *TrelloHandler) handleGetCardAttachments(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	cardID, err := getStringParam(args, "card_id", true)
	if err != nil {
		return nil, err
	}

	attachments, err := h.client.GetCardAttachments(ctx, cardID)
	if err != nil {
		return nil, h.mapper.MapError(ToolTrelloGetCardAttachments, err)
	}

	simplified := []map[string]interface{}{}
	for _, attachment := range attachments {
		simplified = append(simplified, map[string]interface{}{
			"id":    itemField(attachment, "id"),
			"name":  itemField(attachment, "name"),
			"url":   itemField(attachment, "url"),
			"bytes": itemField(attachment, "bytes"),
			"date":  itemField(attachment, "date"),
		})
	}

	return h.mapper.MapToToolResponse(map[string]interface{}{
		"attachments": simplified,
		"raw":         attachments,
	})
}

// handleGetCardComments handles the trello_get_card_comments tool call.
// Comments are commentCard actions; the text lives either at data.text or
// nested under data.textData.text depending on the action variant.
func (h *TrelloHandler) handleGetCardComments(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	cardID, err := getStringParam(args, "card_id", true)
	if err != nil {
		return nil, err
	}

	actions, err := h.client.GetCardComments(ctx, cardID)
	if err != nil {
		return nil, h.mapper.MapError(ToolTrelloGetCardComments, err)
	}

	simplified := []map[string]interface{}{}
	for _, action := range actions {
		text := itemField(action, "data", "text")
		if text == nil {
			text = itemField(action, "data", "textData", "text")
		}
		simplified = append(simplified, map[string]interface{}{
			"id":            itemField(action, "id"),
			"date":          itemField(action, "date"),
			"type":          itemField(action, "type"),
			"text":          text,
			"memberCreator": itemField(action, "memberCreator", "username"),
		})
	}

	return h.mapper.MapToToolResponse(map[string]interface{}{
		"comments": simplified,
		"raw":      actions,
	})
}
