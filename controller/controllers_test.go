package controller

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/bricksandmortarstudio/sms-dispatch/service"
	"github.com/bricksandmortarstudio/sms-dispatch/service/dto"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

var (
	OK200           bool
	noContentCalled bool
	stringCalled    bool
	stringStatus    int
)

func resetFlags() {
	OK200 = false
	noContentCalled = false
	stringCalled = false
	stringStatus = 0
}

func TestGetCreateCommunicationFunc(t *testing.T) {
	resetFlags()
	f := GetCreateCommunicationFunc(mockService{})

	err := f(mockContext{})

	require.NoError(t, err)
	require.True(t, OK200)

	bindError := errors.New("Bind error")

	err = f(mockContext{bindError: bindError})

	require.Equal(t, bindError, err)

	resetFlags()
	f = GetCreateCommunicationFunc(mockService{serviceErr: service.NewInvalidPayloadError("blablabla")})

	err = f(mockContext{})

	require.NoError(t, err)
	require.True(t, stringCalled)
	require.Equal(t, http.StatusBadRequest, stringStatus)

	resetFlags()
	f = GetCreateCommunicationFunc(mockService{serviceErr: errors.New("blablabla")})

	err = f(mockContext{})

	require.NoError(t, err)
	require.True(t, stringCalled)
	require.Equal(t, http.StatusInternalServerError, stringStatus)
}

func TestGetApproveCommunicationFunc(t *testing.T) {
	resetFlags()
	f := GetApproveCommunicationFunc(mockService{})

	err := f(mockContext{param: "123"})

	require.NoError(t, err)
	require.True(t, noContentCalled)

	err = f(mockContext{param: ""})

	require.Error(t, err)

	resetFlags()
	f = GetApproveCommunicationFunc(mockService{serviceErr: errors.New("not found")})

	err = f(mockContext{param: "123"})

	require.NoError(t, err)
	require.True(t, stringCalled)
	require.Equal(t, http.StatusNotFound, stringStatus)

	resetFlags()
	f = GetApproveCommunicationFunc(mockService{serviceErr: service.NewInvalidPayloadError("not draft")})

	err = f(mockContext{param: "123"})

	require.NoError(t, err)
	require.True(t, stringCalled)
	require.Equal(t, http.StatusBadRequest, stringStatus)
}

func TestGetSendCommunicationFunc(t *testing.T) {
	resetFlags()
	f := GetSendCommunicationFunc(mockService{})

	err := f(mockContext{param: "123"})

	require.NoError(t, err)
	require.True(t, OK200)

	resetFlags()
	f = GetSendCommunicationFunc(mockService{serviceErr: errors.New("not found")})

	err = f(mockContext{param: "123"})

	require.NoError(t, err)
	require.True(t, stringCalled)
	require.Equal(t, http.StatusNotFound, stringStatus)

	resetFlags()
	f = GetSendCommunicationFunc(mockService{serviceErr: errors.New("blablabla")})

	err = f(mockContext{param: "123"})

	require.NoError(t, err)
	require.True(t, stringCalled)
	require.Equal(t, http.StatusInternalServerError, stringStatus)
}

func TestGetCheckCommunicationFunc(t *testing.T) {
	resetFlags()
	f := GetCheckCommunicationFunc(mockService{})

	err := f(mockContext{param: "123"})

	require.NoError(t, err)
	require.True(t, OK200)

	err = f(mockContext{param: ""})

	require.Error(t, err)

	resetFlags()
	f = GetCheckCommunicationFunc(mockService{serviceErr: errors.New("not found")})

	err = f(mockContext{param: "123"})

	require.NoError(t, err)
	require.True(t, stringCalled)
	require.Equal(t, http.StatusNotFound, stringStatus)
}

func TestGetSendAdHocFunc(t *testing.T) {
	resetFlags()
	f := GetSendAdHocFunc(mockService{})

	err := f(mockContext{})

	require.NoError(t, err)
	require.True(t, noContentCalled)

	resetFlags()
	f = GetSendAdHocFunc(mockService{serviceErr: service.NewInvalidPayloadError("blablabla")})

	err = f(mockContext{})

	require.NoError(t, err)
	require.True(t, stringCalled)
	require.Equal(t, http.StatusBadRequest, stringStatus)
}

func TestGetGatewayCallbackFunc(t *testing.T) {
	resetFlags()
	f := GetGatewayCallbackFunc(mockService{})

	err := f(mockContext{param: "tok123", formValues: map[string]string{"MessageSid": "msg-1", "MessageStatus": "delivered"}})

	require.NoError(t, err)
	require.True(t, noContentCalled)

	resetFlags()
	f = GetGatewayCallbackFunc(mockService{serviceErr: errors.New("not found")})

	err = f(mockContext{param: "badtoken"})

	require.NoError(t, err)
	require.True(t, stringCalled)
	require.Equal(t, http.StatusNotFound, stringStatus)
}

//-----------mocks--------
type mockContext struct {
	bindError  error
	param      string
	queryParam string
	formValues map[string]string
}

type mockService struct {
	serviceErr error
}

func (m mockService) CreateCommunication(comm dto.Communication) (dto.Id, error) {
	return dto.Id{}, m.serviceErr
}

func (m mockService) ApproveCommunication(id uint32) error {
	return m.serviceErr
}

func (m mockService) SendCommunication(ctx context.Context, id uint32) (dto.RunReport, error) {
	return dto.RunReport{}, m.serviceErr
}

func (m mockService) CheckStatusOfCommunication(id uint32) (dto.CommunicationStatus, error) {
	return dto.CommunicationStatus{}, m.serviceErr
}

func (m mockService) SendAdHoc(ctx context.Context, message dto.AdHocMessage) error {
	return m.serviceErr
}

func (m mockService) HandleGatewayCallback(token, uniqueMessageId, status string) error {
	return m.serviceErr
}

func (m mockContext) Request() *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", nil)
}

func (m mockContext) SetRequest(r *http.Request) {
	panic("implement me")
}

func (m mockContext) SetResponse(r *echo.Response) {
	panic("implement me")
}

func (m mockContext) Response() *echo.Response {
	panic("implement me")
}

func (m mockContext) IsTLS() bool {
	panic("implement me")
}

func (m mockContext) IsWebSocket() bool {
	panic("implement me")
}

func (m mockContext) Scheme() string {
	panic("implement me")
}

func (m mockContext) RealIP() string {
	panic("implement me")
}

func (m mockContext) Path() string {
	panic("implement me")
}

func (m mockContext) SetPath(p string) {
	panic("implement me")
}

func (m mockContext) Param(name string) string {
	return m.param
}

func (m mockContext) ParamNames() []string {
	panic("implement me")
}

func (m mockContext) SetParamNames(names ...string) {
	panic("implement me")
}

func (m mockContext) ParamValues() []string {
	panic("implement me")
}

func (m mockContext) SetParamValues(values ...string) {
	panic("implement me")
}

func (m mockContext) QueryParam(name string) string {
	return m.queryParam
}

func (m mockContext) QueryParams() url.Values {
	panic("implement me")
}

func (m mockContext) QueryString() string {
	panic("implement me")
}

func (m mockContext) FormValue(name string) string {
	return m.formValues[name]
}

func (m mockContext) FormParams() (url.Values, error) {
	panic("implement me")
}

func (m mockContext) FormFile(name string) (*multipart.FileHeader, error) {
	panic("implement me")
}

func (m mockContext) MultipartForm() (*multipart.Form, error) {
	panic("implement me")
}

func (m mockContext) Cookie(name string) (*http.Cookie, error) {
	panic("implement me")
}

func (m mockContext) SetCookie(cookie *http.Cookie) {
	panic("implement me")
}

func (m mockContext) Cookies() []*http.Cookie {
	panic("implement me")
}

func (m mockContext) Get(key string) interface{} {
	panic("implement me")
}

func (m mockContext) Set(key string, val interface{}) {
	panic("implement me")
}

func (m mockContext) Bind(i interface{}) error {
	return m.bindError
}

func (m mockContext) Validate(i interface{}) error {
	panic("implement me")
}

func (m mockContext) Render(code int, name string, data interface{}) error {
	panic("implement me")
}

func (m mockContext) HTML(code int, html string) error {
	panic("implement me")
}

func (m mockContext) HTMLBlob(code int, b []byte) error {
	panic("implement me")
}

func (m mockContext) String(code int, s string) error {
	stringCalled = true
	stringStatus = code
	return nil
}

func (m mockContext) JSON(code int, i interface{}) error {
	OK200 = true
	return nil
}

func (m mockContext) JSONPretty(code int, i interface{}, indent string) error {
	panic("implement me")
}

func (m mockContext) JSONBlob(code int, b []byte) error {
	panic("implement me")
}

func (m mockContext) JSONP(code int, callback string, i interface{}) error {
	panic("implement me")
}

func (m mockContext) JSONPBlob(code int, callback string, b []byte) error {
	panic("implement me")
}

func (m mockContext) XML(code int, i interface{}) error {
	panic("implement me")
}

func (m mockContext) XMLPretty(code int, i interface{}, indent string) error {
	panic("implement me")
}

func (m mockContext) XMLBlob(code int, b []byte) error {
	panic("implement me")
}

func (m mockContext) Blob(code int, contentType string, b []byte) error {
	panic("implement me")
}

func (m mockContext) Stream(code int, contentType string, r io.Reader) error {
	panic("implement me")
}

func (m mockContext) File(file string) error {
	panic("implement me")
}

func (m mockContext) Attachment(file string, name string) error {
	panic("implement me")
}

func (m mockContext) Inline(file string, name string) error {
	panic("implement me")
}

func (m mockContext) NoContent(code int) error {
	noContentCalled = true
	return nil
}

func (m mockContext) Redirect(code int, url string) error {
	panic("implement me")
}

func (m mockContext) Error(err error) {
	panic("implement me")
}

func (m mockContext) Handler() echo.HandlerFunc {
	panic("implement me")
}

func (m mockContext) SetHandler(h echo.HandlerFunc) {
	panic("implement me")
}

func (m mockContext) Logger() echo.Logger {
	panic("implement me")
}

func (m mockContext) Echo() *echo.Echo {
	panic("implement me")
}

func (m mockContext) Reset(r *http.Request, w http.ResponseWriter) {
	panic("implement me")
}
