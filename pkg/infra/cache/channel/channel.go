package channel

type Channel string

const SnapshotsChannel Channel = "redteam:snapshots"
