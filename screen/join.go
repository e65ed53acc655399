package screen

import (
	"errors"

	"github.com/rs/zerolog"

	"ipm-quickstart/messaging"
)

var errNilChannel = errors.New("create returned no channel")

type SyncPhase int

const (
	PhaseUninitialized SyncPhase = iota
	PhaseSyncing
	PhaseSynced
)

func (p SyncPhase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseSyncing:
		return "syncing"
	case PhaseSynced:
		return "synced"
	default:
		return "unknown"
	}
}

// JoinSequencer resolves or creates the shared channel once the client has
// finished its initial sync, then joins it. It runs on the loop; every SDK
// completion is dispatched back onto the loop before touching state.
//
// Two clients that both find no channel will both create one. Only the
// first rename to the unique name succeeds; the other client stays on its
// own unnamed channel.
type JoinSequencer struct {
	loop         *Loop
	uniqueName   string
	friendlyName string
	log          zerolog.Logger

	phase   SyncPhase
	channel ChannelState
}

func NewJoinSequencer(loop *Loop, uniqueName, friendlyName string, log zerolog.Logger) *JoinSequencer {
	return &JoinSequencer{
		loop:         loop,
		uniqueName:   uniqueName,
		friendlyName: friendlyName,
		log:          log,
	}
}

func (j *JoinSequencer) Phase() SyncPhase {
	return j.phase
}

func (j *JoinSequencer) Channel() ChannelState {
	return j.channel
}

// Start marks the client as constructed.
func (j *JoinSequencer) Start() {
	if j.phase == PhaseUninitialized {
		j.phase = PhaseSyncing
	}
}

// HandleSyncStatus advances to synced on the first completed status. Every
// other status, and any status once synced, is ignored.
func (j *JoinSequencer) HandleSyncStatus(client messaging.Client, status messaging.SyncStatus) {
	if status != messaging.SyncStatusCompleted || j.phase != PhaseSyncing {
		j.log.Debug().Stringer("status", status).Stringer("phase", j.phase).Msg("sync status ignored")
		return
	}
	j.phase = PhaseSynced
	j.log.Info().Msg("sync completed")

	list := client.ChannelsList()
	if ch := list.ChannelWithUniqueName(j.uniqueName); ch != nil {
		j.channel = resolvedChannel(ch)
		ch.Join(func(err error) {
			j.loop.Dispatch(func() { j.logJoin(ch, err) })
		})
		return
	}

	opts := messaging.ChannelOptions{FriendlyName: j.friendlyName, Type: messaging.ChannelTypePublic}
	list.CreateChannel(opts, func(ch messaging.Channel, err error) {
		j.loop.Dispatch(func() { j.created(ch, err) })
	})
}

func (j *JoinSequencer) created(ch messaging.Channel, err error) {
	if err == nil && ch == nil {
		err = errNilChannel
	}
	if err != nil {
		j.channel = failedChannel(err)
		j.log.Error().Err(err).Str("friendly_name", j.friendlyName).Msg("failed to create channel")
		return
	}
	j.log.Info().Str("sid", ch.SID()).Msg("channel created")
	j.channel = resolvedChannel(ch)

	ch.Join(func(err error) {
		j.loop.Dispatch(func() {
			j.logJoin(ch, err)
			if err != nil {
				return
			}
			ch.SetUniqueName(j.uniqueName, func(err error) {
				j.loop.Dispatch(func() { j.logRename(ch, err) })
			})
		})
	})
}

func (j *JoinSequencer) logJoin(ch messaging.Channel, err error) {
	if err != nil {
		j.log.Error().Err(err).Str("sid", ch.SID()).Msg("failed to join channel")
		return
	}
	j.log.Info().Str("sid", ch.SID()).Msg("channel joined")
}

func (j *JoinSequencer) logRename(ch messaging.Channel, err error) {
	if err != nil {
		j.log.Error().Err(err).Str("sid", ch.SID()).Str("unique_name", j.uniqueName).Msg("failed to set channel unique name")
		return
	}
	j.log.Info().Str("sid", ch.SID()).Str("unique_name", j.uniqueName).Msg("channel unique name set")
}
