package controller

import (
	"net/http"
	"strconv"

	"github.com/bricksandmortarstudio/sms-dispatch/log"
	"github.com/bricksandmortarstudio/sms-dispatch/service"
	"github.com/bricksandmortarstudio/sms-dispatch/service/dto"
	"github.com/labstack/echo/v4"
)

// CreateCommunication godoc
// @Summary Create communication
// @Description Creates a draft communication with its recipients
// @Accept json
// @Produce json
// @Param communication body dto.Communication true "Communication"
// @Success 200 {object} dto.Id
// @Failure 400 "error description"
// @Router /communications [post]
func GetCreateCommunicationFunc(srv service.Service) echo.HandlerFunc {

	return func(c echo.Context) error {
		comm := new(dto.Communication)
		if err := c.Bind(comm); err != nil {
			return err
		}

		id, err := srv.CreateCommunication(*comm)
		if err != nil {
			switch err.(type) {
			case *service.InvalidPayloadErr:
				return c.String(http.StatusBadRequest, err.Error())
			default:
				log.Error.Println(err)
				return c.String(http.StatusInternalServerError, "System malfunction. Please, try later")
			}
		}

		return c.JSON(http.StatusOK, id)
	}
}

// ApproveCommunication godoc
// @Summary Approve communication
// @Description Approves a draft communication for sending
// @Param id path int true "Communication id"
// @Success 204
// @Failure 400 "error description"
// @Router /communications/{id}/approve [post]
func GetApproveCommunicationFunc(srv service.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id32, err := parseId(c.Param("id"))
		if err != nil {
			return err
		}

		err = srv.ApproveCommunication(id32)
		if err != nil {
			switch {
			case isInvalidPayload(err):
				return c.String(http.StatusBadRequest, err.Error())
			case err.Error() == "not found":
				return c.String(http.StatusNotFound, "Communication not found "+c.Param("id"))
			default:
				log.Error.Println(err)
				return c.String(http.StatusInternalServerError, "System malfunction. Please, try later")
			}
		}

		return c.NoContent(http.StatusNoContent)
	}
}

// SendCommunication godoc
// @Summary Send communication
// @Description Dispatches the pending recipients of an approved communication
// @Produce json
// @Param id path int true "Communication id"
// @Success 200 {object} dto.RunReport
// @Failure 400 "error description"
// @Router /communications/{id}/send [post]
func GetSendCommunicationFunc(srv service.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id32, err := parseId(c.Param("id"))
		if err != nil {
			return err
		}

		report, err := srv.SendCommunication(c.Request().Context(), id32)
		if err != nil {
			switch {
			case err.Error() == "not found":
				return c.String(http.StatusNotFound, "Communication not found "+c.Param("id"))
			default:
				log.Error.Println(err)
				return c.String(http.StatusInternalServerError, "System malfunction. Please, try later")
			}
		}

		return c.JSON(http.StatusOK, report)
	}
}

// CheckCommunication godoc
// @Summary Check communication
// @Description Checks per recipient delivery status of a communication
// @Produce json
// @Param id path int true "Communication id"
// @Success 200 {object} dto.CommunicationStatus
// @Failure 400 "error description"
// @Router /communications/{id} [get]
func GetCheckCommunicationFunc(srv service.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id32, err := parseId(c.Param("id"))
		if err != nil {
			return err
		}

		status, err := srv.CheckStatusOfCommunication(id32)
		if err != nil {
			if err.Error() == "not found" {
				return c.String(http.StatusNotFound, "Communication not found "+c.Param("id"))
			}
			log.Error.Println(err)
			return c.String(http.StatusInternalServerError, "System malfunction. Please, try later")
		}

		return c.JSON(http.StatusOK, status)
	}
}

// SendAdHoc godoc
// @Summary Send ad hoc message
// @Description Sends a message to specified phones outside any communication
// @Accept json
// @Param message body dto.AdHocMessage true "Message"
// @Success 202
// @Failure 400 "error description"
// @Router /messages [post]
func GetSendAdHocFunc(srv service.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		msg := new(dto.AdHocMessage)
		if err := c.Bind(msg); err != nil {
			return err
		}

		err := srv.SendAdHoc(c.Request().Context(), *msg)
		if err != nil {
			switch err.(type) {
			case *service.InvalidPayloadErr:
				return c.String(http.StatusBadRequest, err.Error())
			default:
				log.Error.Println(err)
				return c.String(http.StatusInternalServerError, "System malfunction. Please, try later")
			}
		}

		return c.NoContent(http.StatusAccepted)
	}
}

// GatewayCallback godoc
// @Summary Gateway status callback
// @Description Receives provider pushed delivery status updates
// @Accept x-www-form-urlencoded
// @Param token path string true "Callback token"
// @Param MessageSid formData string true "Provider message id"
// @Param MessageStatus formData string true "Delivery status"
// @Success 204
// @Failure 404 "error description"
// @Router /webhooks/sms/{token} [post]
func GetGatewayCallbackFunc(srv service.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := srv.HandleGatewayCallback(c.Param("token"), c.FormValue("MessageSid"), c.FormValue("MessageStatus"))
		if err != nil {
			switch {
			case isInvalidPayload(err):
				return c.String(http.StatusBadRequest, err.Error())
			case err.Error() == "not found":
				return c.String(http.StatusNotFound, "Unknown callback token")
			default:
				log.Error.Println(err)
				return c.String(http.StatusInternalServerError, "System malfunction. Please, try later")
			}
		}

		return c.NoContent(http.StatusNoContent)
	}
}

func parseId(id string) (uint32, error) {
	id64, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(id64), nil
}

func isInvalidPayload(err error) bool {
	_, ok := err.(*service.InvalidPayloadErr)
	return ok
}
