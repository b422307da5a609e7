package net

// Opcode is the 2-character code identifying a request or response type.
// Codes are decoded once at the transport boundary; handlers never touch the
// raw bytes. The argument schema for each outbound opcode is noted beside
// its constant — arguments are pipe-terminated decimal strings, with
// semicolon-delimited sub-lists for character/skill/ability listings.
type Opcode string

// Client → server.
const (
	OpConnect         Opcode = "00" // accountName | password
	OpDisconnect      Opcode = "01" // accountId | token
	OpCreateAccount   Opcode = "02" // accountName | password
	OpCreateCharacter Opcode = "07" // accountId | token | characterName
	OpHeartbeat       Opcode = "10" // accountId | token
	OpEnterWorld      Opcode = "11" // accountId | token | characterName
	OpDeleteCharacter Opcode = "13" // accountId | token | characterName
	OpPlayerUpdate    Opcode = "15" // accountId | token | updateId | characterId | posX | posY | posZ | rightClickHeld | mouseDirX | mouseDirY | mouseDirZ
	OpActivateAbility Opcode = "19" // accountId | token | abilityId
	OpSendChatMessage Opcode = "21" // accountId | token | message | senderName
	OpSetTarget       Opcode = "23" // accountId | token | targetId
	OpUnsetTarget     Opcode = "24" // accountId | token
)

// Server → client.
const (
	OpCreateAccountSuccessful   Opcode = "03" // (no args)
	OpCreateAccountUnsuccessful Opcode = "04" // reason
	OpLoginSuccessful           Opcode = "05" // accountId | token | characterList
	OpLoginUnsuccessful         Opcode = "06" // reason
	OpCreateCharacterSuccessful Opcode = "08" // characterList
	OpCreateCharacterUnsuccessful Opcode = "09" // reason
	OpEnterWorldSuccessful      Opcode = "12" // accountId | posX | posY | posZ | modelId | textureId | skillList | abilityList | name
	OpDeleteCharacterSuccessful Opcode = "14" // characterList
	OpPlayerCorrection          Opcode = "16" // updateId | posX | posY | posZ
	OpGameObjectUpdate          Opcode = "17" // id | posX | posY | posZ | movX | movY | movZ | type
	OpOtherPlayerUpdate         Opcode = "18" // id | posX | posY | posZ | movX | movY | movZ | modelId | textureId | name
	OpActivateAbilitySuccess    Opcode = "20" // abilityId
	OpPropagateChatMessage      Opcode = "22" // senderName | message
	OpServerMessage             Opcode = "25" // message | messageType
	OpAttackHit                 Opcode = "26" // attackerId | targetId | damage
	OpAttackMiss                Opcode = "27" // attackerId | targetId
	OpNpcDeath                  Opcode = "28" // id | itemIdList
	OpDeleteGameObject          Opcode = "29" // id
)
